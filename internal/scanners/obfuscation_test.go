// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package scanners

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npmaudit/npmaudit/internal/finding"
	"github.com/npmaudit/npmaudit/internal/scanner"
)

func TestObfuscationScannerHexEscapeRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.js", "var x = '\\x41\\x42\\x43\\x44\\x45';\n")

	res := (&ObfuscationScanner{}).Scan(context.Background(), root, scanner.Options{})
	found := false
	for _, f := range res.Findings {
		if strings.Contains(f.Message, "hex-escape") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestObfuscationScannerLongBase64Blob(t *testing.T) {
	root := t.TempDir()
	blob := strings.Repeat("QUJDREVGR0hJSktMTU5PUFFSU1RVVldYWVowMTIzNDU2Nzg5", 12)
	writeFile(t, root, "index.js", "const b = '"+blob+"';\n")

	res := (&ObfuscationScanner{}).Scan(context.Background(), root, scanner.Options{})
	found := false
	for _, f := range res.Findings {
		if strings.Contains(f.Message, "base64") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestObfuscationScannerVeryLongLine(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.js", "const x = "+strings.Repeat("a", 1100)+";\n")

	res := (&ObfuscationScanner{}).Scan(context.Background(), root, scanner.Options{})
	found := false
	for _, f := range res.Findings {
		if strings.Contains(f.Message, "minification") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestObfuscationScannerNoIndicators(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.js", "module.exports = function add(a, b) { return a + b; };\n")

	res := (&ObfuscationScanner{}).Scan(context.Background(), root, scanner.Options{})
	assert.True(t, res.Passed)
	assert.Equal(t, "No obfuscation detected", res.Summary)
}

func TestObfuscationScannerStringArrayRotation(t *testing.T) {
	root := t.TempDir()
	var sb strings.Builder
	sb.WriteString("var _0x1a2b = [")
	for i := 0; i < 60; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("'a'")
	}
	sb.WriteString("];\nfunction _0x1a2b_rotate(){ _0x1a2b.push(_0x1a2b.shift()); }\n")
	writeFile(t, root, "index.js", sb.String())

	res := (&ObfuscationScanner{}).Scan(context.Background(), root, scanner.Options{})
	found := false
	for _, f := range res.Findings {
		if f.Severity == finding.SeverityCritical && strings.Contains(f.Message, "rotation") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestObfuscationScannerStringArrayData(t *testing.T) {
	root := t.TempDir()
	var sb strings.Builder
	sb.WriteString("const keywords = [")
	words := []string{"function", "return", "import", "export", "const", "let", "class", "typeof"}
	for i := 0; i < 60; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("'" + words[i%len(words)] + "'")
	}
	sb.WriteString("];\n")
	writeFile(t, root, "data.js", sb.String())

	res := (&ObfuscationScanner{}).Scan(context.Background(), root, scanner.Options{})
	found := false
	for _, f := range res.Findings {
		if f.Severity == finding.SeverityInfo && strings.Contains(f.Message, "large string array") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestShannonEntropyUniform(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	h := shannonEntropy(data)
	assert.InDelta(t, 8.0, h, 0.01)
}

func TestShannonEntropyConstant(t *testing.T) {
	data := []byte(strings.Repeat("a", 300))
	h := shannonEntropy(data)
	assert.Equal(t, 0.0, h)
}

func TestObfuscationScannerDiscardsFindingsOnCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.js", strings.Repeat("a=b;", 500))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := (&ObfuscationScanner{}).Scan(ctx, root, scanner.Options{})
	assert.False(t, res.Passed)
	assert.Empty(t, res.Findings)
	assert.ErrorIs(t, res.Err, context.Canceled)
}
