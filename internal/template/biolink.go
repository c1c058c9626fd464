package template

import "strings"

// Embedded slice of the biolink model predicate and class hierarchies, enough
// to drive the inversion and raising templates without the full model
// toolkit. Unknown predicates raise to biolink:related_to, the hierarchy
// root; unknown categories raise to nothing and the template skips.

// inversePredicates maps a predicate to its inverse, both directions.
var inversePredicates = map[string]string{
	"biolink:treats":                         "biolink:treated_by",
	"biolink:affects":                        "biolink:affected_by",
	"biolink:causes":                         "biolink:caused_by",
	"biolink:regulates":                      "biolink:regulated_by",
	"biolink:contributes_to":                 "biolink:contribution_from",
	"biolink:has_part":                       "biolink:part_of",
	"biolink:produces":                       "biolink:produced_by",
	"biolink:subclass_of":                    "biolink:superclass_of",
	"biolink:has_phenotype":                  "biolink:phenotype_of",
	"biolink:disrupts":                       "biolink:disrupted_by",
	"biolink:gene_associated_with_condition": "biolink:condition_associated_with_gene",
}

// symmetricPredicates are their own inverse.
var symmetricPredicates = map[string]struct{}{
	"biolink:related_to":                 {},
	"biolink:associated_with":            {},
	"biolink:correlated_with":            {},
	"biolink:coexpressed_with":           {},
	"biolink:interacts_with":             {},
	"biolink:physically_interacts_with":  {},
	"biolink:genetically_interacts_with": {},
	"biolink:homologous_to":              {},
	"biolink:similar_to":                 {},
}

func init() {
	// Register the reverse direction of every asymmetric inverse pair.
	for p, inv := range inversePredicates {
		if _, ok := inversePredicates[inv]; !ok {
			inversePredicates[inv] = p
		}
	}
}

// InversePredicate returns the inverse of a biolink predicate, when known.
// Symmetric predicates invert to themselves.
func InversePredicate(predicate string) (string, bool) {
	if _, ok := symmetricPredicates[predicate]; ok {
		return predicate, true
	}
	inv, ok := inversePredicates[predicate]
	return inv, ok
}

// PredicateRoot is the top of the biolink predicate hierarchy.
const PredicateRoot = "biolink:related_to"

// parentPredicates maps a predicate to its immediate biolink parent.
var parentPredicates = map[string]string{
	"biolink:treats": "biolink:treats_or_applied_or_studied_to_treat",
	"biolink:treats_or_applied_or_studied_to_treat": "biolink:affects",
	"biolink:ameliorates_condition":                 "biolink:affects",
	"biolink:causes":                                "biolink:contributes_to",
	"biolink:contributes_to":                        "biolink:affects",
	"biolink:regulates":                             "biolink:affects",
	"biolink:disrupts":                              "biolink:affects",
	"biolink:affects":                               PredicateRoot,
	"biolink:has_phenotype":                         PredicateRoot,
	"biolink:interacts_with":                        PredicateRoot,
	"biolink:associated_with":                       PredicateRoot,
	"biolink:gene_associated_with_condition":        "biolink:associated_with",
	"biolink:correlated_with":                       "biolink:associated_with",
}

// ParentPredicate returns the biolink parent of a predicate. Unknown
// predicates raise straight to the root; the root itself has no parent.
func ParentPredicate(predicate string) string {
	if predicate == PredicateRoot {
		return ""
	}
	if parent, ok := parentPredicates[predicate]; ok {
		return parent
	}
	return PredicateRoot
}

// CategoryRoot is the top of the biolink class hierarchy.
const CategoryRoot = "biolink:NamedThing"

// parentCategories maps a category to its immediate biolink parent.
var parentCategories = map[string]string{
	"biolink:SmallMolecule":              "biolink:MolecularEntity",
	"biolink:MolecularEntity":            "biolink:ChemicalEntity",
	"biolink:Drug":                       "biolink:ChemicalEntity",
	"biolink:ChemicalEntity":             CategoryRoot,
	"biolink:Disease":                    "biolink:DiseaseOrPhenotypicFeature",
	"biolink:PhenotypicFeature":          "biolink:DiseaseOrPhenotypicFeature",
	"biolink:DiseaseOrPhenotypicFeature": "biolink:BiologicalEntity",
	"biolink:Gene":                       "biolink:GeneOrGeneProduct",
	"biolink:Protein":                    "biolink:GeneOrGeneProduct",
	"biolink:GeneOrGeneProduct":          "biolink:BiologicalEntity",
	"biolink:BiologicalProcess":          "biolink:BiologicalEntity",
	"biolink:Pathway":                    "biolink:BiologicalEntity",
	"biolink:BiologicalEntity":           CategoryRoot,
	"biolink:AnatomicalEntity":           "biolink:BiologicalEntity",
	"biolink:Cell":                       "biolink:AnatomicalEntity",
}

// ParentCategory returns the biolink parent class of a category, or "" when
// the category is the root or unknown.
func ParentCategory(category string) string {
	return parentCategories[category]
}

// InvertAssociation returns the inverse form of a biolink association
// predicate, or "" when no inverse is known. Empty input passes through.
func InvertAssociation(association string) string {
	if association == "" {
		return ""
	}
	if inv, ok := InversePredicate(association); ok {
		return inv
	}
	return ""
}

const (
	subjectQualifierPrefix = "subject_"
	objectQualifierPrefix  = "object_"
)

// swapQualifierType exchanges subject_* and object_* qualifier type prefixes,
// with or without the biolink: namespace.
func swapQualifierType(typeID string) string {
	namespace := ""
	local := typeID
	if idx := strings.Index(typeID, ":"); idx >= 0 {
		namespace = typeID[:idx+1]
		local = typeID[idx+1:]
	}
	switch {
	case strings.HasPrefix(local, subjectQualifierPrefix):
		return namespace + objectQualifierPrefix + strings.TrimPrefix(local, subjectQualifierPrefix)
	case strings.HasPrefix(local, objectQualifierPrefix):
		return namespace + subjectQualifierPrefix + strings.TrimPrefix(local, objectQualifierPrefix)
	}
	return typeID
}
