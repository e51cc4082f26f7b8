package surveyor

import (
	"github.com/jward/surveyor/internal/analyzer"
	"github.com/jward/surveyor/internal/discover"
	"github.com/jward/surveyor/internal/history"
)

// Public type aliases for internal types used in the Driver and visitor
// APIs. These are Go type aliases (=) — identical to the internal types at
// compile time. External consumers use these names; no conversion is needed.

type AnalysisRoot = discover.Root
type AnalyzerOptions = analyzer.Options
type DiagnosticRecord = analyzer.DiagnosticRecord
type FileResult = analyzer.FileResult
type LineIndex = analyzer.LineIndex
type Node = analyzer.Node
type Severity = analyzer.Severity
type HistoryStore = history.Store

const (
	SeverityInfo    = analyzer.SeverityInfo
	SeverityWarning = analyzer.SeverityWarning
	SeverityError   = analyzer.SeverityError
)
