//go:build js && wasm

//rsc:client

package pages

import (
	"strconv"
	"syscall/js"

	"github.com/conneroisu/rsc/internal/boundary"
)

func init() {
	doc := js.Global().Get("document")
	ref := doc.Call("querySelector", `template[`+boundary.ReferenceAttr+`="`+CounterEntry+`"]`)
	if ref.IsNull() {
		return
	}

	count := 0
	button := doc.Call("createElement", "button")
	button.Set("textContent", "Clicked 0 times")
	button.Call("addEventListener", "click", js.FuncOf(func(js.Value, []js.Value) any {
		count++
		button.Set("textContent", "Clicked "+strconv.Itoa(count)+" times")
		return nil
	}))
	ref.Call("replaceWith", button)
}
