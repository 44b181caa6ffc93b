package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourorg/defi-tvl-analyzer/internal/model"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"chain:0x123", "0x123"},
		{"ethereum:0xabc:extra", "0xabc:extra"},
		{"0xabc", "0xabc"},
		{"", ""},
		{":0x1", "0x1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.input))
		})
	}
}

func TestChecksumAddress(t *testing.T) {
	assert.Equal(t,
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		ChecksumAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.Empty(t, ChecksumAddress("0x123"))
	assert.Empty(t, ChecksumAddress(""))
}

func TestTwitterURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"testprotocol", "https://x.com/testprotocol"},
		{"@testprotocol", "https://x.com/testprotocol"},
		{"https://twitter.com/testprotocol", "https://twitter.com/testprotocol"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, TwitterURL(tt.input))
		})
	}
}

func TestBuildInfo_ChecksummedEVMAddress(t *testing.T) {
	info := BuildInfo(model.ProtocolRecord{
		Name:    "Lido",
		Address: "ethereum:0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	})

	assert.Equal(t, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", info.Address)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", info.ChecksumAddress)
	assert.Empty(t, info.Twitter)
}

func TestBuildInfo_PassesIdentityFields(t *testing.T) {
	info := BuildInfo(model.ProtocolRecord{
		ID:         "182",
		Name:       "Lido",
		Chain:      "Multi-Chain",
		AuditLinks: []string{"https://example.com/audit"},
		Oracles:    []string{"Chainlink"},
		ForkedFrom: []string{"Compound"},
	})

	assert.Equal(t, "182", info.ID)
	assert.Equal(t, "Multi-Chain", info.Chain)
	assert.Equal(t, []string{"https://example.com/audit"}, info.AuditLinks)
	assert.Equal(t, []string{"Chainlink"}, info.Oracles)
	assert.Equal(t, []string{"Compound"}, info.ForkedFrom)
}
