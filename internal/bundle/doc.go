// Package bundle holds an ordered list of files and their binary wire format.
//
// Each entry is encoded as
//
//	path || content || u64be(len(path)) || u64be(len(content))
//
// and entries are concatenated in order. The length fields trail the data
// they describe, so Unmarshal reads the buffer from the end. The format has
// no version tag; packets and archives carry their own.
package bundle
