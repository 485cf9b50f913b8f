package model

import "encoding/json"

// SyncState is the synchronisation status of an OLD instance with its leader.
type SyncState string

const (
	StateSynced    SyncState = "synced"
	StateOutOfSync SyncState = "out-of-sync"
)

// Instance describes one OLD (Online Linguistic Database) instance.
//
// An Instance decoded from JSON remembers the document it came from and
// encodes back to exactly that document: absent keys stay absent and keys
// outside the typed fields are kept. Instances built in Go encode from the
// typed fields, with nil Leader and State as null.
type Instance struct {
	Name     string     `json:"name" example:"Okanagan"`
	URL      string     `json:"url" example:"http://127.0.0.1:5679/oka"`
	Leader   *string    `json:"leader" example:"https://projects.linguistics.ubc.ca/okaold"`
	State    *SyncState `json:"state" enums:"synced,out-of-sync"`
	AutoSync bool       `json:"auto-sync?"`

	doc map[string]json.RawMessage
}

// typedInstance has Instance's fields without its JSON methods.
type typedInstance Instance

// UnmarshalJSON decodes an instance object, checking the known fields
// against their types.
func (i *Instance) UnmarshalJSON(b []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	var typed typedInstance
	if err := json.Unmarshal(b, &typed); err != nil {
		return err
	}
	*i = Instance(typed)
	i.doc = doc
	return nil
}

// MarshalJSON encodes the submitted document when there is one.
func (i Instance) MarshalJSON() ([]byte, error) {
	if i.doc != nil {
		return json.Marshal(i.doc)
	}
	return json.Marshal(typedInstance(i))
}

// Registry is the whole document served on "/".
type Registry struct {
	DativeURL    string              `json:"dative-url" example:"http://127.0.0.1:5678/"`
	OLDURL       string              `json:"old-url" example:"http://127.0.0.1:5679/"`
	OLDInstances map[string]Instance `json:"old-instances"`
}

// Clone returns a copy of r that shares no mutable state with it.
func (r Registry) Clone() Registry {
	out := Registry{
		DativeURL:    r.DativeURL,
		OLDURL:       r.OLDURL,
		OLDInstances: make(map[string]Instance, len(r.OLDInstances)),
	}
	for k, v := range r.OLDInstances {
		out.OLDInstances[k] = v.Clone()
	}
	return out
}

// Clone returns a copy of i with its optional fields re-allocated.
func (i Instance) Clone() Instance {
	if i.Leader != nil {
		l := *i.Leader
		i.Leader = &l
	}
	if i.State != nil {
		s := *i.State
		i.State = &s
	}
	if i.doc != nil {
		doc := make(map[string]json.RawMessage, len(i.doc))
		for k, v := range i.doc {
			doc[k] = append(json.RawMessage(nil), v...)
		}
		i.doc = doc
	}
	return i
}

// Ptr is a small helper for populating optional fields.
func Ptr[T any](v T) *T { return &v }
