package analyzer

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/yourorg/defi-tvl-analyzer/internal/model"
)

const twitterProfileURL = "https://x.com/"

// BuildInfo extracts the identity fields of rec with address and twitter normalized.
func BuildInfo(rec model.ProtocolRecord) model.ProtocolInfo {
	address := NormalizeAddress(rec.Address)

	return model.ProtocolInfo{
		ID:              rec.ID,
		Name:            rec.Name,
		Address:         address,
		ChecksumAddress: ChecksumAddress(address),
		Symbol:          rec.Symbol,
		URL:             rec.URL,
		Description:     rec.Description,
		Category:        rec.Category,
		Chain:           rec.Chain,
		Chains:          rec.Chains,
		Logo:            rec.Logo,
		Twitter:         TwitterURL(rec.Twitter),
		GitHub:          rec.GitHub,
		AuditLinks:      rec.AuditLinks,
		Oracles:         rec.Oracles,
		ForkedFrom:      rec.ForkedFrom,
		ListedAt:        rec.ListedAt,
	}
}

// NormalizeAddress strips a chain qualifier such as "ethereum:" from address.
// Only the first ':' is treated as the delimiter.
func NormalizeAddress(address string) string {
	if _, bare, found := strings.Cut(address, ":"); found {
		return bare
	}
	return address
}

// ChecksumAddress returns the EIP-55 form of an EVM address, or "" when
// address is not a 20-byte hex address.
func ChecksumAddress(address string) string {
	if !common.IsHexAddress(address) {
		return ""
	}
	return common.HexToAddress(address).Hex()
}

// TwitterURL expands a bare handle to a profile URL. Full URLs pass unchanged.
func TwitterURL(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ""
	}
	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		return handle
	}
	return twitterProfileURL + strings.TrimPrefix(handle, "@")
}
