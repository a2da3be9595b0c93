package reconcile

import (
	"errors"

	"backend/internal/models"
)

// Upload is a file read fully into memory by the transport.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ChildPayload is one submitted child: loosely typed fields plus the file
// sent for its file field, if any.
type ChildPayload struct {
	Fields map[string]any
	File   *Upload
}

// Request is one aggregate write. A nil pointer slice means the collection
// was omitted; a non-nil empty slice means it was sent empty.
type Request struct {
	Fields map[string]any

	FloorPlans *[]ChildPayload
	Lots       *[]ChildPayload
	Contacts   *[]ChildPayload

	RenderingsAdd  []ChildPayload
	KeepRenderings *[]int64
	DocumentsAdd   []ChildPayload
	KeepDocuments  *[]int64
	// KeepDocumentsByType prunes only the documents of the keyed type.
	KeepDocumentsByType map[string][]int64
	FeatureFinishesAdd  []ChildPayload
	KeepFeatureFinishes *[]int64

	AmenityIDs *[]int64

	DeletedFloorPlanIDs []int64
	DeletedLotIDs       []int64

	SitePlan *ChildPayload
}

// Document keys recognised by ParseDocument. Anything else stays in
// Request.Fields and is checked against the project field table.
const (
	KeyFloorPlans          = "floor_plans"
	KeyLots                = "lots"
	KeyContacts            = "contacts"
	KeyAmenityIDs          = "amenity_ids"
	KeyKeepRenderings      = "existing_renderings_keep"
	KeyKeepDocuments       = "existing_documents_keep"
	KeyKeepFeatureFinishes = "existing_feature_finishes_keep"
	KeyDeletedFloorPlanIDs = "deleted_floor_plan_ids"
	KeyDeletedLotIDs       = "deleted_lot_ids"
	KeySitePlan            = "site_plan"
)

// Legacy spellings of the keep lists.
var keepAliases = map[string]string{
	"existing_images":            KeyKeepRenderings,
	"existing_features_finishes": KeyKeepFeatureFinishes,
}

// Legacy document keep lists, each covering one document type.
var typedDocumentKeeps = map[string]string{
	"existing_legal_documents":     models.DocumentTypeDocument,
	"existing_marketing_documents": models.DocumentTypeMarketing,
}

// ParseDocument splits a decoded JSON (or form-derived) document into a
// Request. Collection values may be native lists or JSON-encoded strings.
func ParseDocument(doc map[string]any) (*Request, error) {
	req := &Request{Fields: make(map[string]any, len(doc))}

	for key, raw := range doc {
		if alias, ok := keepAliases[key]; ok {
			key = alias
		}
		if docType, ok := typedDocumentKeeps[key]; ok {
			ids, err := parseIDs(key, raw)
			if err != nil {
				return nil, err
			}
			req.keepDocumentType(docType, ids)
			continue
		}
		switch key {
		case KeyFloorPlans:
			items, err := parseChildren(KeyFloorPlans, raw)
			if err != nil {
				return nil, err
			}
			req.FloorPlans = items
		case KeyLots:
			items, err := parseChildren(KeyLots, raw)
			if err != nil {
				return nil, err
			}
			req.Lots = items
		case KeyContacts:
			items, err := parseChildren(KeyContacts, raw)
			if err != nil {
				return nil, err
			}
			req.Contacts = items
		case KeyAmenityIDs:
			ids, err := parseIDs(key, raw)
			if err != nil {
				return nil, err
			}
			req.AmenityIDs = ids
		case KeyKeepRenderings, KeyKeepDocuments, KeyKeepFeatureFinishes:
			ids, err := parseIDs(key, raw)
			if err != nil {
				return nil, err
			}
			req.mergeKeep(key, ids)
		case KeyDeletedFloorPlanIDs, KeyDeletedLotIDs:
			ids, err := parseIDs(key, raw)
			if err != nil {
				return nil, err
			}
			if ids == nil {
				continue
			}
			if key == KeyDeletedFloorPlanIDs {
				req.DeletedFloorPlanIDs = append(req.DeletedFloorPlanIDs, *ids...)
			} else {
				req.DeletedLotIDs = append(req.DeletedLotIDs, *ids...)
			}
		case KeySitePlan:
			if raw == nil {
				continue
			}
			fields, ok := raw.(map[string]any)
			if !ok {
				return nil, shapeError(ChildSitePlan, 0, "", "expected an object, got %T", raw)
			}
			req.SitePlan = &ChildPayload{Fields: fields}
		default:
			req.Fields[key] = raw
		}
	}
	return req, nil
}

func (r *Request) mergeKeep(key string, ids *[]int64) {
	if ids == nil {
		return
	}
	target := &r.KeepRenderings
	switch key {
	case KeyKeepDocuments:
		target = &r.KeepDocuments
	case KeyKeepFeatureFinishes:
		target = &r.KeepFeatureFinishes
	}
	if *target == nil {
		merged := append([]int64{}, *ids...)
		*target = &merged
		return
	}
	merged := append(**target, *ids...)
	*target = &merged
}

func (r *Request) keepDocumentType(docType string, ids *[]int64) {
	if ids == nil {
		return
	}
	if r.KeepDocumentsByType == nil {
		r.KeepDocumentsByType = make(map[string][]int64)
	}
	r.KeepDocumentsByType[docType] = append(r.KeepDocumentsByType[docType], *ids...)
}

func parseChildren(child string, raw any) (*[]ChildPayload, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		decoded, err := decodeJSONList(s)
		if err != nil {
			return nil, shapeError(child, 0, "", "%v", err)
		}
		raw = decoded
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, shapeError(child, 0, "", "expected a list, got %T", raw)
	}
	out := make([]ChildPayload, len(list))
	for i, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, shapeError(child, i, "", "expected an object, got %T", item)
		}
		out[i] = ChildPayload{Fields: fields}
	}
	return &out, nil
}

func parseIDs(key string, raw any) (*[]int64, error) {
	v, err := coerceIDList(raw)
	if err != nil {
		return nil, &ValidationError{Kind: KindCoercion, Index: ParentIndex, Field: key, Message: err.Error()}
	}
	if v == nil {
		return nil, nil
	}
	ids := v.([]int64)
	return &ids, nil
}

func decodeJSONList(s string) (any, error) {
	items, ok, err := listItems(s)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("expected a list")
	}
	return items, nil
}
