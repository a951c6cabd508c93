// Package server exposes the session store over HTTP. Specifications
// come in as YAML, JSON or HCL request bodies; everything else on the
// wire is JSON. Typed errors from the lower layers are mapped onto
// status codes here and nowhere else.
package server
