// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package database

import (
	"context"
	"fmt"

	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/models"
)

type seedEntry struct {
	title     string
	author    string
	docType   string
	category  string
	year      int
	citations int
	abstract  string
}

// UDSM archive starter catalog, inserted only when the documents table is
// empty so a fresh deployment has something to browse.
var seedCatalog = []seedEntry{
	{"The Hill Observer: 1970 Edition", "UDSM Press", models.DocumentTypeJournal, "Social Sciences", 1970, 45,
		"A collection of student perspectives during the 1970s socialist era."},
	{"Evolution of Swahili Press", "Prof. M. H. Y.", models.DocumentTypeBook, "Social Sciences", 1998, 120,
		"Tracing the roots of Swahili journalism from colonial times to the present."},
	{"Voices of the Struggle", "Student Union", models.DocumentTypePaper, "Social Sciences", 1985, 30,
		"Critical essays on the role of campus media in political liberation."},
	{"Tanganyika Standard Vol 1", "National Archives", models.DocumentTypeBook, "General", 1964, 85,
		"Archived copies of the Tanganyika Standard from the independence era."},
	{"Media Law & Ethics", "Dr. J. K.", models.DocumentTypeBook, "Social Sciences", 2005, 210,
		"A comprehensive guide to media laws and ethical standards in East Africa."},
	{"Radio Tanzania History", "Dept of Journalism", models.DocumentTypePaper, "Social Sciences", 1990, 55,
		"The impact of Radio Tanzania on national unity and education."},
	{"The Campus Voice: 2000", "UDSM Media Corp", models.DocumentTypeJournal, "General", 2000, 12,
		"Millennium issue covering the transition to digital media."},
	{"Pan-Africanism and Media", "Dr. Walter R.", models.DocumentTypeBook, "Social Sciences", 1978, 340,
		"Analyzing the role of media in the Pan-African movement."},
	{"Engineering Innovation in TZ", "CoET Faculty", models.DocumentTypePaper, "Engineering", 2020, 15,
		"A review of modern engineering practices at UDSM."},
	{"Medical Advancements 2023", "MUHAS/UDSM", models.DocumentTypeJournal, "Medicine", 2023, 8,
		"Recent clinical findings in tropical medicine."},
}

// SeedCatalog inserts the starter catalog if the documents table is empty.
// Safe to call on every startup.
func (db *DB) SeedCatalog(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	count, err := db.TotalBooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to check catalog size: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, entry := range seedCatalog {
		year := entry.year
		abstract := entry.abstract
		doc := models.Document{
			Title:           entry.title,
			Author:          entry.author,
			Type:            entry.docType,
			Category:        entry.category,
			PublicationYear: &year,
			Citations:       entry.citations,
			Abstract:        &abstract,
		}
		if err := db.CreateDocument(ctx, &doc); err != nil {
			return fmt.Errorf("failed to seed %q: %w", entry.title, err)
		}
	}

	logging.Info().Int("documents", len(seedCatalog)).Msg("seeded starter catalog")
	return nil
}
