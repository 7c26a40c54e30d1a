package resource

import (
	"fmt"
	"sort"
)

const (
	genericNoInput = "Please enter a search term."
	genericEmpty   = "No data found."
)

// Catalog entries.
var (
	Disease = Resource{
		Name:           "disease",
		Title:          "Dataset",
		Path:           "/disease",
		Paged:          true,
		Fields:         []string{"disease", "disease_id", "gene_id", "gene_name", "protein_name", "pathway"},
		NoInputMessage: genericNoInput,
		EmptyMessage:   genericEmpty,
	}

	ProteinInteraction = Resource{
		Name:           "protein-interaction",
		Title:          "Protein Protein Interactions",
		Path:           "/protein-interaction",
		Paged:          true,
		Fields:         []string{"protein1", "protein2", "score", "disease"},
		Filters:        []string{FilterProtein1, FilterProtein2, FilterDisease},
		OptionKeys:     []string{"protein1", "protein2", "disease"},
		NoInputMessage: genericNoInput,
		EmptyMessage:   genericEmpty,
	}

	Metabolites = Resource{
		Name:           "metabolites",
		Title:          "Metabolites",
		Path:           "/metabolites",
		Fields:         []string{"disease", "metabolite", "associated_drug"},
		Filters:        []string{FilterDisease},
		Required:       FilterDisease,
		OptionKeys:     []string{"disease"},
		NoInputMessage: "Please enter a disease name.",
		EmptyMessage:   "No data found for the entered disease.",
	}

	Drugs = Resource{
		Name:           "drugs",
		Title:          "Drug-induced Diseases",
		Path:           "/drugs",
		Fields:         []string{"disease", "drug", "severity", "source", "effect"},
		Filters:        []string{FilterDisease},
		OptionKeys:     []string{"diseases"},
		NoInputMessage: genericNoInput,
		EmptyMessage:   genericEmpty,
	}

	TPM = Resource{
		Name:           "tpm",
		Title:          "Transcripts per Million",
		Path:           "/tpm",
		Fields:         []string{"gene_name", "gene_id", "liver"},
		Filters:        []string{FilterName},
		Required:       FilterName,
		OptionKeys:     []string{"gene"},
		NoInputMessage: "Please enter a Gene name.",
		EmptyMessage:   "No data found for the entered gene.",
	}
)

var catalog = map[string]Resource{
	Disease.Name:            Disease,
	ProteinInteraction.Name: ProteinInteraction,
	Metabolites.Name:        Metabolites,
	Drugs.Name:              Drugs,
	TPM.Name:                TPM,
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (Resource, error) {
	r, ok := catalog[name]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return r, nil
}

// All returns every catalog entry sorted by name.
func All() []Resource {
	out := make([]Resource, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
