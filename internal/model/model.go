// Package model defines the core data structures for the defi-tvl-analyzer.
package model

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TimeSeriesPoint is a single validated TVL observation.
type TimeSeriesPoint struct {
	// Date is the Unix timestamp (seconds) of the observation
	Date int64 `json:"date"`

	// Value is the TVL in USD at Date
	Value float64 `json:"value"`
}

// Series is a cleaned TVL series, sorted ascending by Date.
type Series []TimeSeriesPoint

// Values returns the values of the series in order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// RawPoint is a TVL observation exactly as received from upstream. Date and Value
// hold whatever the payload carried (float64, string, nil, ...) and are only
// trusted after validation.
type RawPoint struct {
	Date  any `json:"date"`
	Value any `json:"value"`
}

// UnmarshalJSON accepts the value under "totalLiquidityUSD" (protocol series),
// "tvl" (chain series) or "value", first match wins. Elements that are not
// JSON objects decode to an empty point, which validation drops.
func (p *RawPoint) UnmarshalJSON(data []byte) error {
	*p = RawPoint{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var raw struct {
		Date              any `json:"date"`
		TotalLiquidityUSD any `json:"totalLiquidityUSD"`
		TVL               any `json:"tvl"`
		Value             any `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Date = raw.Date
	switch {
	case raw.TotalLiquidityUSD != nil:
		p.Value = raw.TotalLiquidityUSD
	case raw.TVL != nil:
		p.Value = raw.TVL
	default:
		p.Value = raw.Value
	}
	return nil
}

// ChainTVLMap maps a chain name to its raw TVL series.
type ChainTVLMap map[string][]RawPoint

// UnmarshalJSON decodes the upstream shape {"<chain>": {"tvl": [...]}}.
func (m *ChainTVLMap) UnmarshalJSON(data []byte) error {
	var raw map[string]struct {
		TVL []RawPoint `json:"tvl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(ChainTVLMap, len(raw))
	for chain, entry := range raw {
		out[chain] = entry.TVL
	}
	*m = out
	return nil
}

// MarshalJSON writes the map back in the upstream shape.
func (m ChainTVLMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]struct {
		TVL []RawPoint `json:"tvl"`
	}, len(m))
	for chain, points := range m {
		out[chain] = struct {
			TVL []RawPoint `json:"tvl"`
		}{TVL: points}
	}
	return json.Marshal(out)
}

// ProtocolRecord is a protocol payload as delivered by the data-fetching layer.
// Only TVL and ChainTVLs are analyzed; identity fields pass through.
type ProtocolRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Symbol      string   `json:"symbol"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Chain       string   `json:"chain"`
	Chains      []string `json:"chains"`
	Logo        string   `json:"logo"`
	Category    string   `json:"category"`
	Twitter     string   `json:"twitter"`
	GitHub      []string `json:"github"`
	AuditLinks  []string `json:"audit_links"`
	Oracles     []string `json:"oracles"`
	ForkedFrom  []string `json:"forkedFrom"`
	ListedAt    int64    `json:"listedAt"`

	TVL       []RawPoint  `json:"tvl"`
	ChainTVLs ChainTVLMap `json:"chainTvls"`
}

// ProtocolInfo is the identity part of an analysis, with address and social
// handles normalized.
type ProtocolInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`

	// ChecksumAddress is the EIP-55 form of Address, set only for EVM addresses
	ChecksumAddress string `json:"checksumAddress,omitempty"`

	Symbol      string   `json:"symbol"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Chain       string   `json:"chain"`
	Chains      []string `json:"chains"`
	Logo        string   `json:"logo"`
	Twitter     string   `json:"twitter"`
	GitHub      []string `json:"github,omitempty"`
	AuditLinks  []string `json:"audit_links,omitempty"`
	Oracles     []string `json:"oracles,omitempty"`
	ForkedFrom  []string `json:"forkedFrom,omitempty"`
	ListedAt    int64    `json:"listedAt"`
}

// StatSummary holds descriptive statistics for one cleaned series.
type StatSummary struct {
	StartTVL   float64 `json:"startTVL"`
	CurrentTVL float64 `json:"currentTVL"`
	MinTVL     float64 `json:"minTVL"`
	MaxTVL     float64 `json:"maxTVL"`
	AvgTVL     float64 `json:"avgTVL"`

	// Volatility is the coefficient of variation (population stddev / mean)
	Volatility float64 `json:"volatility"`

	TotalChangePercent float64 `json:"totalChangePercent"`
}

// AnalysisResult is the overall summary plus an optional per-chain breakdown.
type AnalysisResult struct {
	Overall  StatSummary            `json:"overall"`
	PerChain map[string]StatSummary `json:"perChain,omitempty"`
}

// ProtocolAnalysis is the full result of analyzing a ProtocolRecord.
type ProtocolAnalysis struct {
	Info        ProtocolInfo   `json:"info"`
	TVLAnalysis AnalysisResult `json:"tvlAnalysis"`
}
