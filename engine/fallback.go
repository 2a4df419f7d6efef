package engine

// FallbackDocuments is the bundled default set used when the required-document
// fetch fails. Signatures collected against it are simulated only and are
// never persisted server-side.
func FallbackDocuments() []Document {
	return []Document{
		{
			ID:      1,
			Slug:    "terms",
			Title:   "Terms of Service",
			Content: "These Terms of Service govern your use of the SmartStart platform...",
			Version: "1.0",
		},
		{
			ID:      2,
			Slug:    "privacy",
			Title:   "Privacy Policy",
			Content: "This Privacy Policy describes how SmartStart collects and processes personal data...",
			Version: "1.0",
		},
		{
			ID:      3,
			Slug:    "nda",
			Title:   "Non-Disclosure Agreement",
			Content: "This Non-Disclosure Agreement protects confidential information shared between ventures...",
			Version: "1.0",
		},
		{
			ID:      4,
			Slug:    "contributor",
			Title:   "Contributor Agreement",
			Content: "This Contributor Agreement covers intellectual property created within a venture...",
			Version: "1.0",
		},
	}
}
