// Package coding maps request URLs to RequestParameters and back.
//
// The URL scheme follows the classic query based layout:
//
//	?wicket:bookmarkablePage=:pages.Home&id=3     construct a page
//	?wicket:interface=:3:form::IFormSubmitListener::  call a listener on stored page 3
//	?wicket:interface=:3::::                       render stored page 3
//	/resources/app/site.css                        shared resource
//
// The interface parameter has the fields
// pagemap:pageid[:component:path]:version:interface:behavior:depth.
// Empty fields mean the default page map, the latest version, a plain render,
// no behavior and an unknown depth.
//
// Pages can be mounted on readable paths with placeholders:
//
//	s := coding.NewStrategy()
//	_ = s.Mount("/products/${id}/#{tab}", "Product")
//	// /products/7 decodes to class Product with id=7; tab is optional.
package coding
