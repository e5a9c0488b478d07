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

package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ContingencyTable holds counts describing co-occurrence
// of a keyword w and a collocate c in a corpus of size N.
type ContingencyTable struct {

	// N is the corpus size in tokens
	N float64

	// Fw is the frequency of the keyword
	Fw float64

	// Fc is the frequency of the collocate
	Fc float64

	// O is the observed number of co-occurrences
	O float64
}

// Expected returns the number of co-occurrences expected
// under independence of w and c
func (ct ContingencyTable) Expected() float64 {
	if ct.N == 0 {
		return 0
	}
	return ct.Fw * ct.Fc / ct.N
}

// MI returns pointwise mutual information log2(O/E)
func (ct ContingencyTable) MI() float64 {
	e := ct.Expected()
	if ct.O == 0 || e == 0 {
		return math.Inf(-1)
	}
	return math.Log2(ct.O / e)
}

// TScore returns (O - E) / sqrt(O)
func (ct ContingencyTable) TScore() float64 {
	if ct.O == 0 {
		return 0
	}
	return (ct.O - ct.Expected()) / math.Sqrt(ct.O)
}

// Dice returns 2O / (f(w) + f(c))
func (ct ContingencyTable) Dice() float64 {
	if ct.Fw+ct.Fc == 0 {
		return 0
	}
	return 2 * ct.O / (ct.Fw + ct.Fc)
}

// Cells returns the 2x2 table of observed counts
// [[w&c, w&!c], [!w&c, !w&!c]]. As window based co-occurrence
// counts may exceed the marginal frequencies, the cells
// are clamped to be non-negative.
func (ct ContingencyTable) Cells() [2][2]float64 {
	return [2][2]float64{
		{ct.O, math.Max(0, ct.Fw-ct.O)},
		{math.Max(0, ct.Fc-ct.O), math.Max(0, ct.N-ct.Fw-ct.Fc+ct.O)},
	}
}

// LogLikelihood returns Dunning's G2 statistic computed from
// Cells() and their expected values derived from the table
// marginals.
func (ct ContingencyTable) LogLikelihood() float64 {
	cells := ct.Cells()
	rows := [2]float64{cells[0][0] + cells[0][1], cells[1][0] + cells[1][1]}
	cols := [2]float64{cells[0][0] + cells[1][0], cells[0][1] + cells[1][1]}
	total := rows[0] + rows[1]
	if total == 0 {
		return 0
	}
	var ans float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			o := cells[i][j]
			e := rows[i] * cols[j] / total
			if o > 0 && e > 0 {
				ans += o * math.Log(o/e)
			}
		}
	}
	return 2 * ans
}

// PValue returns the probability of observing the log-likelihood
// value under independence (chi-square distribution, 1 degree
// of freedom).
func (ct ContingencyTable) PValue() float64 {
	return distuv.ChiSquared{K: 1}.Survival(ct.LogLikelihood())
}

// AssocScores contains all the association measures
// derived from a contingency table
type AssocScores struct {
	Expected      float64 `json:"expected"`
	MI            float64 `json:"mi"`
	TScore        float64 `json:"tScore"`
	Dice          float64 `json:"dice"`
	LogLikelihood float64 `json:"logLikelihood"`
	PValue        float64 `json:"pValue"`
}

func (ct ContingencyTable) Scores() AssocScores {
	return AssocScores{
		Expected:      ct.Expected(),
		MI:            ct.MI(),
		TScore:        ct.TScore(),
		Dice:          ct.Dice(),
		LogLikelihood: ct.LogLikelihood(),
		PValue:        ct.PValue(),
	}
}
