// Package clientonly marks a package as usable only from client entries.
//
// Importing it from a server component is reported by `rsc check`:
//
//	import _ "github.com/conneroisu/rsc/clientonly"
package clientonly
