package store

import (
	"bytes"
	"encoding/gob"
	"strconv"
	"time"

	"github.com/pairscan/pairscan/pkg/pairscan/types"
)

// StoreVersion is incremented when the record format changes. Records
// written by other versions read as misses.
const StoreVersion = 1

// keySeparator separates key segments. It cannot occur in paths.
const keySeparator = '\x00'

// resultKeyspace prefixes every stored scan result.
const resultKeyspace = "result"

// Record is one persisted scan result with the metadata needed to
// judge staleness on load.
type Record struct {
	Version     int
	Dir         string
	Depth       int
	RootModNano int64
	CreatedAt   time.Time
	Result      types.ScanResult
}

// Encode serializes the record using gob.
func (r *Record) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes gob bytes into the record.
func (r *Record) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(r)
}

// resultKey builds the key for one (dir, depth) result.
// Format: result\x00<dir>\x00<depth>
func resultKey(dir string, depth int) []byte {
	sep := string(keySeparator)
	return []byte(resultKeyspace + sep + dir + sep + strconv.Itoa(depth))
}

// dirPrefix matches every depth stored for dir.
func dirPrefix(dir string) []byte {
	sep := string(keySeparator)
	return []byte(resultKeyspace + sep + dir + sep)
}

// keyspacePrefix matches every stored result.
func keyspacePrefix() []byte {
	return []byte(resultKeyspace + string(keySeparator))
}

// parseResultKey extracts the directory from a result key.
func parseResultKey(key []byte) (dir string, ok bool) {
	rest, found := bytes.CutPrefix(key, keyspacePrefix())
	if !found {
		return "", false
	}
	idx := bytes.LastIndexByte(rest, keySeparator)
	if idx < 0 {
		return "", false
	}
	return string(rest[:idx]), true
}
