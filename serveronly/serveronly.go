// Package serveronly marks a package as usable only from server components.
//
// Importing it from a file carrying the //rsc:client directive is reported
// by `rsc check`:
//
//	import _ "github.com/conneroisu/rsc/serveronly"
package serveronly
