package store

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/roach88/basm/internal/optimizer"
)

// DomainSource separates source hashes from any other SHA-256 use.
// The version suffix allows the hashing scheme to change later.
const DomainSource = "basm/source/v1"

// SourceHash is the cache key for a program.
// Format: SHA256(domain + 0x00 + source), hex encoded.
func SourceHash(src string) string {
	h := sha256.New()
	h.Write([]byte(DomainSource))
	h.Write([]byte{0x00})
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}

// Optimization is a cached optimizer output.
type Optimization struct {
	SourceHash string `json:"source_hash"`
	SourceLen  int    `json:"source_len"`
	Output     string `json:"output"`
	OutputLen  int    `json:"output_len"`
	Seq        int64  `json:"seq"`
}

// NewOptimization builds the cache entry for src and its optimized output.
func NewOptimization(src, output string) Optimization {
	return Optimization{
		SourceHash: SourceHash(src),
		SourceLen:  len(src),
		Output:     output,
		OutputLen:  len(output),
	}
}

// Report is what one optimizer run measured.
type Report struct {
	Before optimizer.Counts      `json:"before"`
	After  optimizer.Counts      `json:"after"`
	Passes []optimizer.PassStats `json:"passes"`
}

// NewReport extracts the stored part of an optimizer result.
func NewReport(res optimizer.Result) Report {
	return Report{Before: res.Before, After: res.After, Passes: res.Passes}
}

// Run is one recorded optimizer invocation.
type Run struct {
	ID         string `json:"id"`
	SourceHash string `json:"source_hash"`
	Label      string `json:"label"`
	Report     Report `json:"report"`
	Seq        int64  `json:"seq"`
}
