package filtering

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/civicsource/civicsource/internal/civic"
)

// ExcludedVendors is the content of an exclude file.
type ExcludedVendors struct {
	Items []*ExcludedVendor `json:"items"`
}

// ExcludedVendor records why a business is no longer offered as a match.
type ExcludedVendor struct {
	Name       string    `json:"name"`
	Address    string    `json:"address,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

// LoadExcludedVendors reads an exclude file. A missing or empty file yields an empty list.
func LoadExcludedVendors(path string) (*ExcludedVendors, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedVendors{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedVendors{}, nil
	}

	var excluded ExcludedVendors
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Exclude appends a candidate to the list.
func (v *ExcludedVendors) Exclude(candidate civic.Candidate, reason string) {
	v.Items = append(v.Items, &ExcludedVendor{
		Name:       candidate.Name,
		Address:    candidate.Address,
		Reason:     reason,
		ExcludedAt: time.Now().UTC(),
	})
}

func (v *ExcludedVendors) Names() []string {
	names := make([]string, 0, len(v.Items))
	for _, vendor := range v.Items {
		names = append(names, vendor.Name)
	}
	return names
}

func (v *ExcludedVendors) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
