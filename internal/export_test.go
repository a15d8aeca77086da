package internal

type RenderInput = renderInput

func DecideRender(in RenderInput) string { return decideRender(in).String() }
