/*
Package ngportal turns a catalog of volumetric microscopy datasets into shareable
Neuroglancer links.

Documentation can be found at https://pkg.go.dev/github.com/janelia-flyem/ngportal

Overview

Each dataset describes its sources: image arrays, label arrays and their mesh
subsources, each with a URL, a storage format, an axis-ordered spatial transform
and display settings.  A view selects some of those sources plus camera settings.
Compiling a view produces a Neuroglancer viewer state and encodes it into the URL
fragment of a viewer host:

	https://neuroglancer-demo.appspot.com/#!%7B%22dimensions%22:...%7D

Sources that can't be shown are dropped with a diagnostic rather than failing the
whole link.  If nothing survives, the link is disabled.

Packages

	space     coordinate spaces, unit conversion and compiled affine transforms
	shader    scalar image shader generation
	layer     image and segmentation layers built from catalog sources
	viewer    viewer state assembly and the URL fragment codec
	compiler  resolves a view or source selection into a link with diagnostics
	catalog   dataset model, schema validation and bucket loading
	server    read-only HTTP API over a catalog
	portal    logging and version information

The ngportal executable in cmd/ngportal serves a catalog ("ngportal serve
config=...") or compiles single links ("ngportal link catalog=... dataset=...").
*/
package ngportal
