// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of CORPQ.
//
//  CORPQ is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CORPQ is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CORPQ.  If not, see <https://www.gnu.org/licenses/>.

package transform

import (
	"corpq/corpus/conc"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/czcorpus/mquery-common/concordance"
)

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func getAttrs(tk *concordance.Token) string {
	ans := make([]string, 0, len(conc.LineAttrs))
	for _, name := range conc.LineAttrs {
		ans = append(ans, fmt.Sprintf("*%s*=&quot;%s&quot;", name, escapeCell(tk.Attrs[name])))
	}
	return strings.Join(ans, " &amp; ")
}

func exportToken(tk *concordance.Token) string {
	if tk.Strong {
		return fmt.Sprintf("**%s**", escapeCell(tk.Word))
	}
	return escapeCell(tk.Word)
}

func exportTextProps(props map[string]string, buff *strings.Builder) {
	for i, k := range slices.Sorted(maps.Keys(props)) {
		if i > 0 {
			buff.WriteString(", ")
		}
		buff.WriteString(fmt.Sprintf("**%s**: %s", k, escapeCell(props[k])))
	}
}

// ConcToMarkdown renders KWIC lines as a markdown table.
// With showAttrs, each line is followed by a row containing
// attributes of the matched tokens. With textProps, a column
// with document metadata is added.
func ConcToMarkdown(lines []conc.KWICLine, showAttrs, textProps bool) string {
	var ans strings.Builder
	if textProps {
		ans.WriteString("|left context | KWIC | right context | text properties |\n")
		ans.WriteString("|-------:|:----:|:-------|--------|\n")

	} else {
		ans.WriteString("|left context | KWIC | right context |\n")
		ans.WriteString("|-------:|:----:|:-------|\n")
	}
	for _, line := range lines {
		var state int
		ans.WriteString("| \u2026")
		metadataBuff := make([]string, 0, 5)
		for _, tk := range line.Text.Tokens() {
			if state == 0 && tk.Strong {
				state = 1
				ans.WriteString(" |")

			} else if !tk.Strong && state == 1 {
				ans.WriteString(" |")
				state = 2
			}
			if tk.Strong && showAttrs && tk.Attrs != nil {
				metadataBuff = append(metadataBuff, "["+getAttrs(tk)+"]")
			}
			ans.WriteString(" " + exportToken(tk))
		}
		if state == 1 {
			ans.WriteString(" |")
		}
		ans.WriteString(" \u2026")
		if textProps {
			ans.WriteString(" | ")
			exportTextProps(line.Props, &ans)
		}
		ans.WriteString("|\n")
		if len(metadataBuff) > 0 {
			ans.WriteString("|| " + strings.Join(metadataBuff, " ") + " ||\n")
		}
	}
	ans.WriteString("\n\n")
	return ans.String()
}
