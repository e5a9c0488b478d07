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

package openapi

import (
	"corpq/corpus"
	"corpq/corpus/deps"
	"corpq/corpus/stats"
)

const (
	apiVersion = "3.1.0"
)

func corpusIDParam() Parameter {
	return Parameter{
		Name:        "corpusId",
		In:          "path",
		Description: "An ID of a corpus to search in",
		Required:    true,
		Schema:      ParamSchema{Type: "string"},
	}
}

func pathParam(name, desc string) Parameter {
	return Parameter{
		Name:        name,
		In:          "path",
		Description: desc,
		Required:    true,
		Schema:      ParamSchema{Type: "string"},
	}
}

func queryParam(name, typ, desc string, required bool) Parameter {
	return Parameter{
		Name:        name,
		In:          "query",
		Description: desc,
		Required:    required,
		Schema:      ParamSchema{Type: typ},
	}
}

func flagParam(name, desc string) Parameter {
	return Parameter{
		Name:        name,
		In:          "query",
		Description: desc,
		Schema:      ParamSchema{Type: "string", Enum: []string{"0", "1"}},
	}
}

func attrParam() Parameter {
	return Parameter{
		Name:        "attr",
		In:          "query",
		Description: "A token attribute the values are taken from",
		Schema: ParamSchema{
			Type:    "string",
			Enum:    []string{"word", "lemma", "pos"},
			Default: "word",
		},
	}
}

func measureParam(dflt stats.Measure) Parameter {
	return Parameter{
		Name:        "measure",
		In:          "query",
		Description: "An association measure used to sort results",
		Schema: ParamSchema{
			Type: "string",
			Enum: []string{
				string(stats.MeasureMI),
				string(stats.MeasureTScore),
				string(stats.MeasureDice),
				string(stats.MeasureLogLikelihood),
				string(stats.MeasureFreq),
			},
			Default: string(dflt),
		},
	}
}

func maxItemsParam() Parameter {
	return queryParam(
		"maxItems",
		"integer",
		"Maximum number of result items. The value is limited by the corpus configuration.",
		false,
	)
}

func localeParam() Parameter {
	return queryParam(
		"lang",
		"string",
		"An ISO 639-1 locale code of response. By default, `en` is used.",
		false,
	)
}

func jsonResponses(withQueryErrors bool) MethodResponses {
	ans := MethodResponses{
		200: {
			Description: "OK",
			Content: map[string]MethodResponseContent{
				"application/json": {Schema: MethodResponseSchema{Type: "object"}},
			},
		},
		404: {Description: "Corpus not found"},
		500: {Description: "Internal server error"},
		504: {Description: "No result within the configured time limit"},
	}
	if withQueryErrors {
		ans[400] = MethodResponse{Description: "Invalid arguments or query (including syntax errors with `code` and `position`)"}
	}
	return ans
}

func NewResponse(ver, url string) *APIResponse {
	paths := make(map[string]Methods)

	paths["/corplist"] = Methods{
		Get: &Method{
			Description: "Shows a list of available corpora with their basic properties.",
			OperationID: "Corplist",
			Parameters:  []Parameter{localeParam()},
			Responses:   jsonResponses(false),
		},
	}

	paths["/info/{corpusId}"] = Methods{
		Get: &Method{
			Description: "Shows configured properties of a corpus.",
			OperationID: "CorpusInfo",
			Parameters:  []Parameter{corpusIDParam(), localeParam()},
			Responses:   jsonResponses(false),
		},
	}

	concResponses := jsonResponses(true)
	concResponses[200] = MethodResponse{
		Description: "OK",
		Content: map[string]MethodResponseContent{
			"application/json": {Schema: MethodResponseSchema{Type: "object"}},
			"text/markdown":    {Schema: MethodResponseSchema{Type: "string"}},
		},
	}
	paths["/concordance/{corpusId}"] = Methods{
		Get: &Method{
			Description: "Searches a corpus for a CQL query (e.g. `[lemma=\"güzel\"] [pos=\"NOUN\"]`) " +
				"and returns matches in the KWIC format.",
			OperationID: "Concordance",
			Parameters: []Parameter{
				corpusIDParam(),
				queryParam("q", "string", "A CQL query", true),
				{
					Name:        "contextWidth",
					In:          "query",
					Description: "Number of tokens on each side of a match",
					Schema:      ParamSchema{Type: "integer", Default: corpus.DfltContextSize},
				},
				{
					Name:        "format",
					In:          "query",
					Description: "Response format",
					Schema:      ParamSchema{Type: "string", Enum: []string{"json", "markdown"}, Default: "json"},
				},
				maxItemsParam(),
				flagParam("matchCase", "Match attribute values case sensitively"),
				flagParam("crossSentence", "Allow the context to reach neighbouring sentences"),
				flagParam("showTokens", "Attach lemma and tag information to each line"),
				flagParam("textProps", "Add a column with document metadata (markdown format only)"),
			},
			Responses: concResponses,
		},
	}

	paths["/freqs/{corpusId}"] = Methods{
		Get: &Method{
			Description: "Calculates a frequency distribution of a token attribute and the type-token ratio.",
			OperationID: "FreqDistrib",
			Parameters: []Parameter{
				corpusIDParam(),
				attrParam(),
				flagParam("ignoreCase", "Convert values to lower case"),
				flagParam("skipPunct", "Ignore punctuation tokens"),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/ngrams/{corpusId}"] = Methods{
		Get: &Method{
			Description: "Extracts n-grams within sentences along with their frequencies.",
			OperationID: "Ngrams",
			Parameters: []Parameter{
				corpusIDParam(),
				{
					Name:        "n",
					In:          "query",
					Description: "Size of n-grams",
					Schema:      ParamSchema{Type: "integer", Default: 2},
				},
				attrParam(),
				flagParam("ignoreCase", "Convert values to lower case"),
				flagParam("skipPunct", "Ignore punctuation tokens"),
				queryParam("minFreq", "integer", "Minimum frequency of an n-gram", false),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/collocations/{corpusId}"] = Methods{
		Get: &Method{
			Description: "Finds collocates of a keyword within a window and scores them by an association measure.",
			OperationID: "Collocations",
			Parameters: []Parameter{
				corpusIDParam(),
				queryParam("keyword", "string", "A node word (or lemma, tag based on `attr`)", true),
				attrParam(),
				{
					Name:        "window",
					In:          "query",
					Description: "Maximum distance of a collocate from the keyword",
					Schema:      ParamSchema{Type: "integer", Default: stats.DfltCollWindow},
				},
				measureParam(stats.MeasureLogLikelihood),
				flagParam("ignoreCase", "Convert values to lower case"),
				flagParam("skipPunct", "Ignore punctuation tokens"),
				queryParam("minFreq", "integer", "Minimum co-occurrence frequency", false),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/bigrams/{corpusId}"] = Methods{
		Get: &Method{
			Description: "Scores all pairs of adjacent values (within sentences) by an association measure.",
			OperationID: "Bigrams",
			Parameters: []Parameter{
				corpusIDParam(),
				attrParam(),
				measureParam(stats.MeasureMI),
				flagParam("ignoreCase", "Convert values to lower case"),
				flagParam("skipPunct", "Ignore punctuation tokens"),
				queryParam("minFreq", "integer", "Minimum frequency of a bigram", false),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/zipf/{corpusId}"] = Methods{
		Get: &Method{
			Description: "Lists the most frequent values with their ranks and frequencies expected by Zipf's law.",
			OperationID: "Zipf",
			Parameters: []Parameter{
				corpusIDParam(),
				attrParam(),
				flagParam("ignoreCase", "Convert values to lower case"),
				flagParam("skipPunct", "Ignore punctuation tokens"),
				{
					Name:        "topN",
					In:          "query",
					Description: "Number of ranks. The value is limited by the corpus configuration.",
					Schema:      ParamSchema{Type: "integer", Default: stats.DfltZipfSize},
				},
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/deps/{corpusId}/deprel/{deprel}"] = Methods{
		Get: &Method{
			Description: "Finds tokens attached to their heads by a dependency relation.",
			OperationID: "DepsDeprel",
			Parameters: []Parameter{
				corpusIDParam(),
				pathParam("deprel", "A Universal Dependencies relation (e.g. `obj`, `nmod:poss`)"),
				queryParam("pos", "string", "Part of speech of the dependent", false),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/deps/{corpusId}/features"] = Methods{
		Get: &Method{
			Description: "Finds tokens having all the specified morphological features.",
			OperationID: "DepsFeatures",
			Parameters: []Parameter{
				corpusIDParam(),
				queryParam("feats", "string", "Features in the CoNLL-U format (e.g. `Case=Acc|Number=Sing`)", true),
				queryParam("pos", "string", "Part of speech", false),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/deps/{corpusId}/pairs"] = Methods{
		Get: &Method{
			Description: "Finds head-dependent pairs. All the filters are optional.",
			OperationID: "DepsPairs",
			Parameters: []Parameter{
				corpusIDParam(),
				queryParam("headLemma", "string", "Lemma of the head (case insensitive)", false),
				queryParam("headPos", "string", "Part of speech of the head", false),
				queryParam("deprel", "string", "Dependency relation", false),
				queryParam("dependentLemma", "string", "Lemma of the dependent (case insensitive)", false),
				queryParam("dependentPos", "string", "Part of speech of the dependent", false),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/deps/{corpusId}/pattern"] = Methods{
		Get: &Method{
			Description: "Finds head-dependent pairs matching a `HEADPOS:deprel>DEPPOS` pattern " +
				"(`*` matches anything).",
			OperationID: "DepsPattern",
			Parameters: []Parameter{
				corpusIDParam(),
				queryParam("p", "string", "A pattern, e.g. `VERB:obj>NOUN`", true),
				maxItemsParam(),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/deps/{corpusId}/tree/{docId}/{sentId}"] = Methods{
		Get: &Method{
			Description: "Returns a dependency tree of a sentence.",
			OperationID: "DepsTree",
			Parameters: []Parameter{
				corpusIDParam(),
				pathParam("docId", "A document ID"),
				pathParam("sentId", "A sentence ID"),
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/deps/{corpusId}/stats"] = Methods{
		Get: &Method{
			Description: "Calculates corpus-wide syntactic statistics.",
			OperationID: "DepsStats",
			Parameters: []Parameter{
				corpusIDParam(),
				{
					Name:        "topN",
					In:          "query",
					Description: "Size of the POS and relation distributions",
					Schema:      ParamSchema{Type: "integer", Default: deps.DfltDistributionSize},
				},
			},
			Responses: jsonResponses(true),
		},
	}

	paths["/query/validate"] = Methods{
		Get: &Method{
			Description: "Tests whether a CQL query is valid.",
			OperationID: "ValidateQuery",
			Parameters:  []Parameter{queryParam("q", "string", "A CQL query", true)},
			Responses:   jsonResponses(true),
		},
	}

	paths["/query/describe"] = Methods{
		Get: &Method{
			Description: "Describes the structure of a CQL query without executing it.",
			OperationID: "DescribeQuery",
			Parameters:  []Parameter{queryParam("q", "string", "A CQL query", true)},
			Responses:   jsonResponses(true),
		},
	}

	return &APIResponse{
		OpenAPI: apiVersion,
		Info: Info{
			Title:       "CORPQ",
			Description: "Corpus query and statistics API over syntactically annotated corpora",
			Version:     ver,
		},
		Servers: []Server{{URL: url}},
		Paths:   paths,
	}
}
