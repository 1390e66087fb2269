/*
Package dihttp provides HTTP middleware that makes a [daggerok.Context] available to
request handlers.

Example:

	package main

	import (
		"net/http"

		"github.com/sectrean/daggerok"
		"github.com/sectrean/daggerok/dicontext"
		"github.com/sectrean/daggerok/dihttp"
	)

	func main() {
		c := daggerok.New("github.com/acme/app")
		if err := c.Initialize(); err != nil {
			panic(err)
		}

		mw, err := dihttp.ContextMiddleware(c)
		if err != nil {
			panic(err)
		}

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc := dicontext.MustBean[*app.Service](r.Context())
			svc.HandleRequest(w, r)
		})

		http.Handle("/", mw(handler))
		http.ListenAndServe(":8080", nil)
	}
*/
package dihttp
