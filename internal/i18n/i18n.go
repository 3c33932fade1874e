package i18n

import "strings"

// French is the console's default language; English is the fallback pair.
const defaultLang = "fr"

var translations = map[string]map[string]string{
	"fr": {
		"required":           "Requis",
		"projectName":        "Le nom du projet est requis",
		"province":           "La province est requise",
		"contractRef":        "La référence du contrat est requise",
		"requester":          "Le demandeur est requis",
		"label":              "Le libellé est requis",
		"quantity":           "La quantité est invalide",
		"unitPrice":          "Le prix unitaire est invalide",
		"taxRatePercent":     "Le taux de taxe est invalide",
		"financialAuthority": "La régie financière est requise",
		"amount":             "Le montant est invalide",
		"upload.too_many":    "Nombre maximum de fichiers atteint",
		"upload.too_large":   "Le fichier dépasse la taille maximale",
		"upload.bad_type":    "Type de fichier non pris en charge",
		"upload.failed":      "Échec du téléversement",
		"delete.confirm":     "Supprimer cette ligne ?",
	},
	"en": {
		"required":           "Required",
		"projectName":        "Project name is required",
		"province":           "Province is required",
		"contractRef":        "Contract reference is required",
		"requester":          "Requester is required",
		"label":              "Label is required",
		"quantity":           "Quantity is invalid",
		"unitPrice":          "Unit price is invalid",
		"taxRatePercent":     "Tax rate is invalid",
		"financialAuthority": "Financial authority is required",
		"amount":             "Amount is invalid",
		"upload.too_many":    "Maximum number of files reached",
		"upload.too_large":   "File exceeds the maximum size",
		"upload.bad_type":    "Unsupported file type",
		"upload.failed":      "Upload failed",
		"delete.confirm":     "Delete this line?",
	},
}

// T resolves a translation code for a language. Unknown languages fall back
// to French; unknown codes fall back to the code itself.
func T(lang, code string) string {
	if msgs, ok := translations[lang]; ok {
		if msg, ok := msgs[code]; ok {
			return msg
		}
	}
	if msg, ok := translations[defaultLang][code]; ok {
		return msg
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if idx := strings.IndexAny(tag, "-;"); idx >= 0 {
			tag = tag[:idx]
		}
		if _, ok := translations[tag]; ok {
			return tag
		}
	}
	return defaultLang
}

// Lookup returns a single-language resolver, shaped for the wizard's
// message hook
func Lookup(lang string) func(code string) string {
	return func(code string) string {
		return T(lang, code)
	}
}
