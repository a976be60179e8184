package domain

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ChangeKind classifies one run of lines in a version comparison.
type ChangeKind string

const (
	ChangeUnchanged ChangeKind = "unchanged"
	ChangeAdded     ChangeKind = "added"
	ChangeRemoved   ChangeKind = "removed"
)

// Change is a contiguous run of lines sharing one kind. Value keeps the
// original line terminators so that concatenating removed+unchanged values
// reproduces the old text and added+unchanged values the new text.
type Change struct {
	Kind  ChangeKind `json:"kind"`
	Value string     `json:"value"`
}

// DiffLines computes a line-level difference between two full snapshots.
// Lines are the unit of comparison. The result is a longest-common-
// subsequence edit script with adjacent same-kind lines merged into runs.
// Identical inputs yield a single unchanged change; if exactly one side is
// empty the result is a single added or removed change; two empty inputs
// yield nil.
func DiffLines(oldText, newText string) []Change {
	oldLines := splitLinesKeepNL(oldText)
	newLines := splitLinesKeepNL(newText)

	if len(oldLines) == 0 && len(newLines) == 0 {
		return nil
	}

	ops := diffLineOps(oldLines, newLines)

	changes := make([]Change, 0, len(ops))
	for _, op := range ops {
		if n := len(changes); n > 0 && changes[n-1].Kind == op.kind {
			changes[n-1].Value += op.line
			continue
		}
		changes = append(changes, Change{Kind: op.kind, Value: op.line})
	}

	return changes
}

// UnifiedDiff renders a classic unified patch (---/+++ headers, @@ hunks)
// between two snapshots for the unified comparison view.
func UnifiedDiff(oldLabel, newLabel, oldText, newText string) (string, error) {
	patch, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: oldLabel,
		ToFile:   newLabel,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render unified diff: %w", err)
	}
	return patch, nil
}

// splitLinesKeepNL splits after every newline and keeps the terminator with
// its line, so joining the pieces restores the input byte for byte. An empty
// input has no lines.
func splitLinesKeepNL(input string) []string {
	if input == "" {
		return nil
	}
	lines := strings.SplitAfter(input, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type lineOp struct {
	kind ChangeKind
	line string
}

func diffLineOps(oldLines, newLines []string) []lineOp {
	m := len(oldLines)
	n := len(newLines)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	ops := make([]lineOp, 0, m+n)
	i, j := 0, 0
	for i < m && j < n {
		if oldLines[i] == newLines[j] {
			ops = append(ops, lineOp{kind: ChangeUnchanged, line: oldLines[i]})
			i++
			j++
			continue
		}

		if dp[i+1][j] >= dp[i][j+1] {
			ops = append(ops, lineOp{kind: ChangeRemoved, line: oldLines[i]})
			i++
		} else {
			ops = append(ops, lineOp{kind: ChangeAdded, line: newLines[j]})
			j++
		}
	}

	for i < m {
		ops = append(ops, lineOp{kind: ChangeRemoved, line: oldLines[i]})
		i++
	}

	for j < n {
		ops = append(ops, lineOp{kind: ChangeAdded, line: newLines[j]})
		j++
	}

	return ops
}
