// Package export renders a selection of questions into exam-paper text.
// Only text dialects are produced; compiling or converting the output into
// binary documents is up to the caller.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"tiku/internal/domain"
)

// Render produces the paper text for questions in the given format and mode.
func Render(questions []domain.Question, format domain.ExportFormat, mode domain.ExportMode, title string, now time.Time) (string, error) {
	switch format {
	case domain.ExportFormatLatex:
		return renderLatex(questions, mode, title, now), nil
	case domain.ExportFormatMarkdown:
		return renderMarkdown(questions, mode, title, now), nil
	default:
		return "", domain.ErrInvalidExportFormat
	}
}

func renderLatex(questions []domain.Question, mode domain.ExportMode, title string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, `\documentclass[12pt,a4paper]{article}
\usepackage[UTF8]{ctex}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{geometry}
\usepackage{graphicx}
\usepackage{enumerate}
\geometry{left=2.5cm,right=2.5cm,top=2.5cm,bottom=2.5cm}

\title{%s}
\author{}
\date{%s}

\begin{document}
\maketitle

\vspace{1cm}
\hrule
\vspace{0.5cm}

`, title, now.Format("2006年01月02日"))

	for i, q := range questions {
		fmt.Fprintf(&b, "\\section*{题目 %d}\n\n", i+1)
		b.WriteString(cleanLatex(q.LatexContent))
		b.WriteString("\n\n")

		for _, img := range q.Images {
			if img == "" {
				continue
			}
			b.WriteString("\\begin{center}\n")
			fmt.Fprintf(&b, "\\includegraphics[width=0.8\\textwidth]{%s}\n", img)
			b.WriteString("\\end{center}\n\n")
		}

		if mode == domain.ExportModeWithAnswers && q.ReferenceAnswer != "" {
			b.WriteString("\\subsection*{参考解答}\n\n")
			b.WriteString(cleanLatex(q.ReferenceAnswer))
			b.WriteString("\n\n")
		}

		if i < len(questions)-1 {
			b.WriteString("\\vspace{0.5cm}\n\\hrule\n\\vspace{0.5cm}\n\n")
		}
	}

	b.WriteString("\\end{document}")
	return b.String()
}

func renderMarkdown(questions []domain.Question, mode domain.ExportMode, title string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n日期：%s\n\n---\n\n", title, now.Format("2006年01月02日"))

	for i, q := range questions {
		fmt.Fprintf(&b, "## 题目 %d\n\n", i+1)
		b.WriteString(strings.TrimSpace(q.LatexContent))
		b.WriteString("\n\n")

		for _, img := range q.Images {
			if img == "" {
				continue
			}
			fmt.Fprintf(&b, "![题图](%s)\n\n", img)
		}

		if mode == domain.ExportModeWithAnswers && q.ReferenceAnswer != "" {
			b.WriteString("### 参考解答\n\n")
			b.WriteString(strings.TrimSpace(q.ReferenceAnswer))
			b.WriteString("\n\n")
		}

		if i < len(questions)-1 {
			b.WriteString("---\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

var multiBlank = regexp.MustCompile(`\n\s*\n\s*\n`)

// cleanLatex collapses runs of blank lines the OCR/LLM pipeline tends to
// leave behind.
func cleanLatex(content string) string {
	return multiBlank.ReplaceAllString(strings.TrimSpace(content), "\n\n")
}
