package fingerprint

import (
	"encoding/binary"
	"sort"
	"unicode/utf8"

	dErrors "lexseal/pkg/domain-errors"
)

// Kind tags the canonical encoding of a leaf so documents and free-text
// evidence can never collide byte-for-byte.
type Kind byte

const (
	KindDocument     Kind = 0x01
	KindEvidenceText Kind = 0x02
)

// Document is one hashable research artifact as supplied by the upstream
// document source.
type Document struct {
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Leaf is one hashable unit of a notarization run. Immutable once built.
type Leaf struct {
	Kind      Kind
	Canonical []byte
	Digest    Digest
}

// DocumentLeaf canonicalizes a document and hashes it. Metadata keys are
// sorted and every variable-length field is length-prefixed, so two
// semantically identical documents always hash identically and "ab"+"c" can
// never collide with "a"+"bc".
func DocumentLeaf(doc Document) (Leaf, error) {
	if err := requireUTF8("title", doc.Title); err != nil {
		return Leaf{}, err
	}
	if err := requireUTF8("content", doc.Content); err != nil {
		return Leaf{}, err
	}

	keys := make([]string, 0, len(doc.Metadata))
	for k := range doc.Metadata {
		if err := requireUTF8("metadata key", k); err != nil {
			return Leaf{}, err
		}
		if err := requireUTF8("metadata value", doc.Metadata[k]); err != nil {
			return Leaf{}, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte{byte(KindDocument)}
	buf = appendLengthPrefixed(buf, doc.Title)
	buf = appendLengthPrefixed(buf, doc.Content)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(keys)))
	for _, k := range keys {
		buf = appendLengthPrefixed(buf, k)
		buf = appendLengthPrefixed(buf, doc.Metadata[k])
	}

	return newLeaf(KindDocument, buf), nil
}

// EvidenceLeaf canonicalizes a free-text evidence item and hashes it.
func EvidenceLeaf(text string) (Leaf, error) {
	if err := requireUTF8("evidence text", text); err != nil {
		return Leaf{}, err
	}
	buf := []byte{byte(KindEvidenceText)}
	buf = appendLengthPrefixed(buf, text)
	return newLeaf(KindEvidenceText, buf), nil
}

func newLeaf(kind Kind, canonical []byte) Leaf {
	return Leaf{
		Kind:      kind,
		Canonical: canonical,
		Digest:    Keccak256(canonical),
	}
}

func appendLengthPrefixed(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func requireUTF8(field, s string) error {
	if !utf8.ValidString(s) {
		return dErrors.Newf(dErrors.CodeEncoding, "%s is not valid UTF-8", field)
	}
	return nil
}
