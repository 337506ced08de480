// Package file implements a document-store emitter backed by the local
// filesystem.
package file
