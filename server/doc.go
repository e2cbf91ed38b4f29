/*
Package server provides the web interface to the dataset catalog and the
viewer-link compiler.

All routes are read-only and live under /api/.  The catalog is loaded once at
start-up and shared read-only by every request.
*/
package server
