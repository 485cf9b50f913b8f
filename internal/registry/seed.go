package registry

import "github.com/dativetop/dativetop-server/internal/model"

// DefaultSeed is the demo document the server starts with.
func DefaultSeed() model.Registry {
	return model.Registry{
		DativeURL: "http://127.0.0.1:5678/",
		OLDURL:    "http://127.0.0.1:5679/",
		OLDInstances: map[string]model.Instance{
			"http://127.0.0.1:5679/bla": {
				Name:     "Blackfoot",
				URL:      "http://127.0.0.1:5679/bla",
				Leader:   model.Ptr("https://projects.linguistics.ubc.ca/blaold"),
				State:    model.Ptr(model.StateOutOfSync),
				AutoSync: false,
			},
			"http://127.0.0.1:5679/oka": {
				Name:     "Okanagan",
				URL:      "http://127.0.0.1:5679/oka",
				AutoSync: false,
			},
			"http://127.0.0.1:5679/sta": {
				Name:     "St'at'imcets",
				URL:      "http://127.0.0.1:5679/sta",
				Leader:   model.Ptr("https://projects.linguistics.ubc.ca/staold"),
				State:    model.Ptr(model.StateSynced),
				AutoSync: true,
			},
		},
	}
}
