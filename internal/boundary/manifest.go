package boundary

import (
	"context"
	"io"
	"sort"

	"github.com/a-h/templ"
)

// ReferenceAttr carries the client entry path on a module reference.
const ReferenceAttr = "data-rsc-client-ref"

// Reference identifies a client entry.
type Reference struct {
	Path    string `json:"path"`
	Package string `json:"package"`
}

// Manifest lists the client entries of a component tree.
type Manifest struct {
	Clients []Reference `json:"clients"`
}

// BuildManifest collects the client entries of modules, ordered by path.
func BuildManifest(modules []*Module) Manifest {
	manifest := Manifest{Clients: []Reference{}}
	for _, m := range modules {
		if m.Client {
			manifest.Clients = append(manifest.Clients, Reference{Path: m.Path, Package: m.Package})
		}
	}
	sort.Slice(manifest.Clients, func(i, j int) bool {
		return manifest.Clients[i].Path < manifest.Clients[j].Path
	})
	return manifest
}

// ClientReference renders the placeholder the server emits in place of a
// client entry.
func ClientReference(path string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<template `+ReferenceAttr+`="`+templ.EscapeString(path)+`"></template>`)
		return err
	})
}
