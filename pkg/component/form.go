package component

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/loom/pkg/markup"
)

// FormComponent is a component bound to a form input.
type FormComponent interface {
	Component
	// InputName is the request parameter carrying the input.
	InputName() string
	// ValidateInput reads and checks the raw input, reporting problems as
	// feedback. It returns false when the input is invalid.
	ValidateInput(cycle Cycle) bool
	// UpdateModel pushes validated input into the model.
	UpdateModel()
}

// Validator checks a converted input value.
type Validator func(value string) error

// Form submits its inputs back to itself. Submission validates every enabled
// input first. Models are only updated when all inputs are valid.
type Form struct {
	ContainerBase
	onSubmit  func(cycle Cycle) error
	onError   func(cycle Cycle) error
	stateless bool
}

// NewForm creates a form.
func NewForm(id string) *Form {
	f := &Form{}
	f.InitContainer(f, id)
	return f
}

// OnSubmit sets the handler called after models are updated.
func (f *Form) OnSubmit(fn func(cycle Cycle) error) *Form {
	f.onSubmit = fn
	return f
}

// OnError sets the handler called when validation fails.
func (f *Form) OnError(fn func(cycle Cycle) error) *Form {
	f.onError = fn
	return f
}

// Stateless lets the form be submitted to a freshly constructed page.
func (f *Form) Stateless() *Form {
	f.stateless = true
	return f
}

// StatelessHint implements StatelessHinter.
func (f *Form) StatelessHint() bool { return f.stateless }

// RenderTag implements TagRenderer.
func (f *Form) RenderTag(r *RenderContext, tag *markup.Tag) {
	tag.SetAttr("method", "post")
	tag.SetAttr("action", r.URLs().ListenerURL(f, FormSubmitListenerName))
}

// OnFormSubmitted implements FormSubmitListener.
func (f *Form) OnFormSubmitted(cycle Cycle) error {
	var (
		inputs    []FormComponent
		submitter *Button
	)
	_ = Walk(f, func(c Component) error {
		if !c.IsVisible() || !c.IsEnabled() {
			return SkipChildren
		}
		if b, ok := c.(*Button); ok && submitter == nil && cycle.FormValue(b.InputName()) != "" {
			submitter = b
		}
		if fc, ok := c.(FormComponent); ok {
			inputs = append(inputs, fc)
		}
		return nil
	})

	valid := true
	for _, in := range inputs {
		if !in.ValidateInput(cycle) {
			valid = false
		}
	}
	if !valid {
		if f.onError != nil {
			return f.onError(cycle)
		}
		return nil
	}

	for _, in := range inputs {
		in.UpdateModel()
	}
	if submitter != nil && submitter.onSubmit != nil {
		if err := submitter.onSubmit(cycle); err != nil {
			return err
		}
	}
	if f.onSubmit != nil {
		return f.onSubmit(cycle)
	}
	return nil
}

// inputName joins ids from the enclosing form down to c.
func inputName(c Component) string {
	ids := []string{c.ID()}
	for p := c.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*Form); ok {
			break
		}
		if _, ok := p.(*Page); ok {
			break
		}
		ids = append(ids, p.ID())
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return strings.Join(ids, PathSeparator)
}

// TextField is a single line text input.
type TextField struct {
	Base
	label      string
	required   bool
	validators []Validator
	input      string
	hasInput   bool
	inputAt    int
}

// NewTextField creates a text input bound to m.
func NewTextField(id string, m Model) *TextField {
	t := &TextField{label: id}
	t.Init(id)
	t.model = m
	return t
}

// Required rejects empty input.
func (t *TextField) Required() *TextField {
	t.required = true
	return t
}

// Label names the field in feedback messages.
func (t *TextField) Label(s string) *TextField {
	t.label = s
	return t
}

// AddValidator adds a check run on non-empty input.
func (t *TextField) AddValidator(v ...Validator) *TextField {
	t.validators = append(t.validators, v...)
	return t
}

// InputName implements FormComponent.
func (t *TextField) InputName() string { return inputName(t) }

// Input returns the last raw input.
func (t *TextField) Input() string { return t.input }

// ValidateInput implements FormComponent.
func (t *TextField) ValidateInput(cycle Cycle) bool {
	t.input = cycle.FormValue(t.InputName())
	t.hasInput = true
	if pg := t.Page(); pg != nil {
		t.inputAt = pg.RenderCount()
	}
	if strings.TrimSpace(t.input) == "" {
		if t.required {
			t.Error(t.label + " is required")
			return false
		}
		return true
	}
	for _, v := range t.validators {
		if err := v(t.input); err != nil {
			t.Error(t.label + ": " + err.Error())
			return false
		}
	}
	return true
}

// UpdateModel implements FormComponent.
func (t *TextField) UpdateModel() {
	t.SetModelObject(t.input)
	t.hasInput = false
}

// RenderTag implements TagRenderer. Invalid input is rendered back so the user
// can correct it.
func (t *TextField) RenderTag(r *RenderContext, tag *markup.Tag) {
	tag.SetAttr("name", t.InputName())
	value := String(t.model)
	if t.hasInput && r.Page().RenderCount() == t.inputAt {
		value = t.input
	}
	if tag.Name == "input" {
		if _, ok := tag.Attr("type"); !ok {
			tag.SetAttr("type", "text")
		}
		tag.SetAttr("value", value)
	}
	if !r.isEnabled(t) {
		tag.SetAttr("disabled", "disabled")
	}
}

// Button submits its form. Its handler runs before the form's.
type Button struct {
	Base
	onSubmit func(cycle Cycle) error
}

// NewButton creates a submit button.
func NewButton(id string, fn func(cycle Cycle) error) *Button {
	b := &Button{onSubmit: fn}
	b.Init(id)
	return b
}

// InputName returns the request parameter sent when the button is clicked.
func (b *Button) InputName() string { return inputName(b) }

// RenderTag implements TagRenderer.
func (b *Button) RenderTag(r *RenderContext, tag *markup.Tag) {
	tag.SetAttr("name", b.InputName())
	if _, ok := tag.Attr("type"); !ok {
		tag.SetAttr("type", "submit")
	}
	if _, ok := tag.Attr("value"); !ok {
		tag.SetAttr("value", "1")
	}
	if !r.isEnabled(b) {
		tag.SetAttr("disabled", "disabled")
	}
}

// MinLength rejects input shorter than n runes.
func MinLength(n int) Validator {
	return func(v string) error {
		if len([]rune(v)) < n {
			return errors.New("too short")
		}
		return nil
	}
}

// MaxLength rejects input longer than n runes.
func MaxLength(n int) Validator {
	return func(v string) error {
		if len([]rune(v)) > n {
			return errors.New("too long")
		}
		return nil
	}
}
