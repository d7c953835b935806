// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/dreamsxin/kvstore"
)

// recordDelim terminates every persisted log record (spec §4.1).
const recordDelim = '#'

// logRecord is the persisted JSON shape of a Set or Rm command. Get commands
// are never persisted.
type logRecord struct {
	Kind  string `json:"kind"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

func recordFromCommand(cmd kvstore.Command) logRecord {
	return logRecord{Kind: cmd.Kind.String(), Key: cmd.Key, Value: cmd.Value}
}

// encodeRecord renders r as a JSON object followed by the '#' delimiter. A
// '#' can only occur inside a JSON string here, so it is written as its
// JSON unicode escape, keeping the delimiter byte out of the record itself.
func encodeRecord(r logRecord) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	data = bytes.ReplaceAll(data, []byte{recordDelim}, []byte("\\u0023"))
	return append(data, recordDelim), nil
}

// decodeRecord parses a single JSON record (without its trailing
// delimiter). Malformed JSON is propagated as-is so callers can recognize
// it as log corruption via errors.As(*json.SyntaxError).
func decodeRecord(data []byte) (logRecord, error) {
	var r logRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return logRecord{}, err
	}
	return r, nil
}

// segmentEntry is one replayed record together with the byte offset its
// record started at.
type segmentEntry struct {
	offset int64
	record logRecord
}

// replaySegment reads every complete record from r in increasing offset
// order. A final, delimiter-less chunk (an unflushed write interrupted by a
// crash) is silently dropped rather than treated as corruption, which is
// what gives reopen its crash-safety (spec P2).
func replaySegment(r io.Reader) (entries []segmentEntry, endOffset int64, err error) {
	br := bufio.NewReaderSize(r, 64*1024)
	var pos int64
	for {
		chunk, rerr := br.ReadBytes(recordDelim)
		if rerr != nil && rerr != io.EOF {
			return nil, 0, rerr
		}
		hasDelim := rerr == nil
		if !hasDelim {
			// Trailing data with no delimiter: either a clean trailing empty
			// chunk (len(chunk) == 0) or a partially written record from a
			// crash. Either way, it is not a committed record.
			break
		}

		data := chunk[:len(chunk)-1]
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, segmentEntry{offset: pos, record: rec})
		pos += int64(len(chunk))
	}
	return entries, pos, nil
}

// readRecordAt opens path, seeks to offset and reads exactly one delimited
// record. Under invariant I1 this must always find a complete Set record.
func readRecordAt(path string, offset int64) (logRecord, error) {
	f, err := openSegmentReadOnly(path)
	if err != nil {
		return logRecord{}, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return logRecord{}, err
	}
	br := bufio.NewReader(f)
	chunk, err := br.ReadBytes(recordDelim)
	if err != nil {
		return logRecord{}, err
	}
	return decodeRecord(chunk[:len(chunk)-1])
}
