// Package internal contains the implementation packages of rsc.
//
// # Package Organization
//
//   - layout: the root layout wrapping every page in the document shell
//   - styles: the style-registry boundary, rule collector and stylesheets
//   - document: parsing and structural checks of rendered documents
//   - boundary: the server/client component graph checker
//   - pages: named pages served inside the layout
//   - server: HTTP runtime, routing and middleware
//   - reload: websocket live-reload hub and browser script
//   - watcher: debounced file watching for the styles directory
//   - config, logging, errors, version: ambient support
//
// Rendering flows from server to pages, wrapped by layout, whose boundary
// collects the styles pages register through the context.
package internal
