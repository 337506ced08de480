// Package console implements an emitter printing envelopes to a writer,
// either as coloured text or as newline delimited JSON.
package console
