// Package docking implements a lightweight protein-ligand docking
// sandbox: catalog targets and compounds, an additive scoring function
// with per-pose noise, and synthetic interaction reports.
package docking

import (
	"errors"
	"fmt"
)

// Protein describes a docking target. Residues is the binding-site pool
// interactions draw from; it is catalog metadata and stays off the wire.
type Protein struct {
	PDBID             string   `json:"pdb_id"`
	Name              string   `json:"name"`
	Organism          string   `json:"organism"`
	Resolution        float64  `json:"resolution"`
	BindingSiteVolume float64  `json:"binding_site_volume"`
	FlexibilityScore  float64  `json:"flexibility_score"`
	Druggability      float64  `json:"druggability"`
	Residues          []string `json:"-"`
}

// Ligand describes a small-molecule compound.
type Ligand struct {
	Name            string  `json:"name"`
	SMILES          string  `json:"smiles"`
	MolecularWeight float64 `json:"molecular_weight"`
	LogP            float64 `json:"logP"`
	HBD             int     `json:"hbd"`
	HBA             int     `json:"hba"`
	RotatableBonds  int     `json:"rotatable_bonds"`
}

var (
	ErrUnknownProtein = errors.New("unknown protein id")
	ErrUnknownLigand  = errors.New("unknown ligand id")
)

var proteinCatalog = map[string]Protein{
	"1HVH": {
		PDBID:             "1HVH",
		Name:              "HIV-1 Protease",
		Organism:          "HIV-1",
		Resolution:        1.8,
		BindingSiteVolume: 450,
		FlexibilityScore:  0.6,
		Druggability:      0.85,
		Residues:          []string{"ILE50", "ASP25", "GLY27", "ALA28", "ASP29", "ASP30"},
	},
	"2OXY": {
		PDBID:             "2OXY",
		Name:              "Cyclooxygenase-2",
		Organism:          "Human",
		Resolution:        2.1,
		BindingSiteVolume: 520,
		FlexibilityScore:  0.4,
		Druggability:      0.92,
		Residues:          []string{"ARG120", "TYR355", "VAL349", "SER530", "LEU352"},
	},
	"6LU7": {
		PDBID:             "6LU7",
		Name:              "SARS-CoV-2 Main Protease",
		Organism:          "SARS-CoV-2",
		Resolution:        2.16,
		BindingSiteVolume: 480,
		FlexibilityScore:  0.5,
		Druggability:      0.88,
		Residues:          []string{"HIS41", "CYS145", "MET49", "GLU166", "HIS163"},
	},
	"5R81": {
		PDBID:             "5R81",
		Name:              "EGFR Kinase",
		Organism:          "Human",
		Resolution:        2.3,
		BindingSiteVolume: 560,
		FlexibilityScore:  0.7,
		Druggability:      0.90,
		Residues:          []string{"MET793", "LEU718", "VAL726", "ALA743", "LYS745"},
	},
}

var ligandCatalog = map[string]Ligand{
	"aspirin": {
		Name:            "Aspirin",
		SMILES:          "CC(=O)Oc1ccccc1C(=O)O",
		MolecularWeight: 180.16,
		LogP:            1.19,
		HBD:             1,
		HBA:             4,
		RotatableBonds:  3,
	},
	"ibuprofen": {
		Name:            "Ibuprofen",
		SMILES:          "CC(C)Cc1ccc(cc1)C(C)C(=O)O",
		MolecularWeight: 206.28,
		LogP:            3.97,
		HBD:             1,
		HBA:             2,
		RotatableBonds:  4,
	},
	"remdesivir": {
		Name:            "Remdesivir",
		SMILES:          "CCC(CC)COC(=O)C(C)NP(=O)(OCC1C(C(C(O1)C#N)(C(=O)OC)C)O)OC2=CC=CC3=C2N=CN=C3N",
		MolecularWeight: 602.58,
		LogP:            1.9,
		HBD:             4,
		HBA:             13,
		RotatableBonds:  14,
	},
}

// ProteinByID looks up a docking target.
func ProteinByID(id string) (Protein, error) {
	p, ok := proteinCatalog[id]
	if !ok {
		return Protein{}, fmt.Errorf("%w: %q", ErrUnknownProtein, id)
	}
	return p, nil
}

// LigandByID looks up a compound.
func LigandByID(id string) (Ligand, error) {
	l, ok := ligandCatalog[id]
	if !ok {
		return Ligand{}, fmt.Errorf("%w: %q", ErrUnknownLigand, id)
	}
	return l, nil
}

// Proteins returns a copy of the target catalog keyed by PDB id.
func Proteins() map[string]Protein {
	out := make(map[string]Protein, len(proteinCatalog))
	for id, p := range proteinCatalog {
		out[id] = p
	}
	return out
}

// Ligands returns a copy of the compound catalog keyed by id.
func Ligands() map[string]Ligand {
	out := make(map[string]Ligand, len(ligandCatalog))
	for id, l := range ligandCatalog {
		out[id] = l
	}
	return out
}
