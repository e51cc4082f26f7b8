package visitors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/surveyor"
)

func sampleResult() *surveyor.FileResult {
	return &surveyor.FileResult{
		Path: "lib/a.dart",
		Diagnostics: []surveyor.DiagnosticRecord{
			{Path: "lib/a.dart", Line: 10, Col: 4, Severity: surveyor.SeverityError, Message: "unused import"},
			{Path: "lib/a.dart", Line: 2, Col: 1, Severity: surveyor.SeverityWarning, Message: "missing }"},
			{Path: "lib/a.dart", Line: 5, Col: 9, Severity: surveyor.SeverityInfo, Message: "note"},
		},
	}
}

func TestSeverityFilter_KeepsAtOrAboveMin(t *testing.T) {
	var buf bytes.Buffer
	stats := &surveyor.RunStatistics{}
	f := NewSeverityFilter(surveyor.SeverityWarning, &buf, stats)

	require.NoError(t, f.FileDiagnostics(sampleResult()))

	assert.Equal(t,
		"lib/a.dart:10:4: ERROR unused import\n"+
			"lib/a.dart:2:1: WARNING missing }\n",
		buf.String())
	assert.Equal(t, 2, stats.Findings)
}

func TestSeverityFilter_ErrorOnly(t *testing.T) {
	var buf bytes.Buffer
	f := NewSeverityFilter(surveyor.SeverityError, &buf, nil)

	require.NoError(t, f.FileDiagnostics(sampleResult()))
	assert.Equal(t, "lib/a.dart:10:4: ERROR unused import\n", buf.String())
}

func TestSeverityFilter_NothingPasses(t *testing.T) {
	var buf bytes.Buffer
	stats := &surveyor.RunStatistics{}
	f := NewSeverityFilter(surveyor.SeverityError, &buf, stats)

	res := &surveyor.FileResult{Path: "a.go", Diagnostics: []surveyor.DiagnosticRecord{
		{Path: "a.go", Line: 1, Col: 1, Severity: surveyor.SeverityInfo, Message: "note"},
	}}
	require.NoError(t, f.FileDiagnostics(res))
	assert.Empty(t, buf.String())
	assert.Zero(t, stats.Findings)
}

func TestSeverityFilter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	f := NewSeverityFilter(surveyor.SeverityInfo, &buf, nil)
	require.NoError(t, f.FileDiagnostics(&surveyor.FileResult{Path: "a.go"}))
	assert.Empty(t, buf.String())
}
