package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
	"backend/internal/reconcile"
)

// Upload keys of the multipart project form.
const (
	formImages          = "uploaded_images"
	formDocuments       = "uploaded_documents"
	formFeatureFinishes = "uploaded_features_finishes"
	formSitePlanFile    = "site_plan_file"
)

// Legacy document upload fields, each with a fixed document type.
var typedDocumentForms = map[string]string{
	"uploaded_legal_documents":     models.DocumentTypeDocument,
	"uploaded_marketing_documents": models.DocumentTypeMarketing,
}

// childFileKey matches floor_plans[0].plan_file and lots[3].lot_rendering.
var childFileKey = regexp.MustCompile(`^(floor_plans|lots)\[(\d+)\]\.(plan_file|lot_rendering)$`)

// indexedKey matches uploaded_documents_titles[2] and similar metadata.
var indexedKey = regexp.MustCompile(`^(uploaded_\w+?)_(titles|types)\[(\d+)\]$`)

// bindProjectRequest decodes a JSON or multipart project write into a
// reconcile.Request. Files larger than maxUpload bytes are rejected.
func bindProjectRequest(c *gin.Context, maxUpload int64) (*reconcile.Request, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return bindMultipart(c, maxUpload)
	}

	var doc map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty body", errBadForm)
		}
		return nil, fmt.Errorf("%w: %v", errBadForm, err)
	}
	return reconcile.ParseDocument(doc)
}

func bindMultipart(c *gin.Context, maxUpload int64) (*reconcile.Request, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadForm, err)
	}

	doc := make(map[string]any, len(form.Value))
	meta := map[string]map[int]string{}
	for key, values := range form.Value {
		if m := indexedKey.FindStringSubmatch(key); m != nil {
			i, _ := strconv.Atoi(m[3])
			group := m[1] + "_" + m[2]
			if meta[group] == nil {
				meta[group] = map[int]string{}
			}
			meta[group][i] = values[0]
			continue
		}
		if len(values) == 1 {
			if blankCollection(key, values[0]) {
				continue
			}
			doc[key] = values[0]
		} else {
			doc[key] = values
		}
	}
	if raw, ok := doc[reconcile.KeySitePlan].(string); ok {
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("%w: site_plan: %v", errBadForm, err)
		}
		doc[reconcile.KeySitePlan] = fields
	}

	req, err := reconcile.ParseDocument(doc)
	if err != nil {
		return nil, err
	}

	for _, key := range sortedKeys(form.File) {
		headers := form.File[key]
		if docType, ok := typedDocumentForms[key]; ok {
			added, err := readGallery(headers, meta[key+"_titles"], nil, maxUpload)
			if err != nil {
				return nil, err
			}
			for _, p := range added {
				p.Fields["document_type"] = docType
			}
			req.DocumentsAdd = append(req.DocumentsAdd, added...)
			continue
		}
		switch key {
		case formImages:
			added, err := readGallery(headers, meta[formImages+"_titles"], nil, maxUpload)
			if err != nil {
				return nil, err
			}
			req.RenderingsAdd = append(req.RenderingsAdd, added...)
		case formFeatureFinishes:
			added, err := readGallery(headers, meta[formFeatureFinishes+"_titles"], nil, maxUpload)
			if err != nil {
				return nil, err
			}
			req.FeatureFinishesAdd = append(req.FeatureFinishesAdd, added...)
		case formDocuments:
			added, err := readGallery(headers, meta[formDocuments+"_titles"], meta[formDocuments+"_types"], maxUpload)
			if err != nil {
				return nil, err
			}
			req.DocumentsAdd = append(req.DocumentsAdd, added...)
		case formSitePlanFile:
			up, err := readUpload(headers[0], maxUpload)
			if err != nil {
				return nil, err
			}
			if req.SitePlan == nil {
				req.SitePlan = &reconcile.ChildPayload{Fields: map[string]any{}}
			}
			req.SitePlan.File = up
		default:
			if err := attachChildFile(req, key, headers[0], maxUpload); err != nil {
				return nil, err
			}
		}
	}
	return req, nil
}

// blankCollection reports an empty form value for a child collection. Such
// values count as omitted.
func blankCollection(key, value string) bool {
	switch key {
	case reconcile.KeyFloorPlans, reconcile.KeyLots, reconcile.KeyContacts:
		return strings.TrimSpace(value) == ""
	}
	return false
}

func attachChildFile(req *reconcile.Request, key string, fh *multipart.FileHeader, maxUpload int64) error {
	m := childFileKey.FindStringSubmatch(key)
	if m == nil {
		return fmt.Errorf("%w: unexpected file field %q", errBadForm, key)
	}
	index, _ := strconv.Atoi(m[2])

	items := req.FloorPlans
	if m[1] == reconcile.KeyLots {
		items = req.Lots
	}
	if items == nil || index >= len(*items) {
		return fmt.Errorf("%w: %s has no element %d", errBadForm, m[1], index)
	}

	up, err := readUpload(fh, maxUpload)
	if err != nil {
		return err
	}
	(*items)[index].File = up
	return nil
}

// readGallery turns the files of one upload field into new children, in
// submission order, with their optional titles and types.
func readGallery(headers []*multipart.FileHeader, titles, types map[int]string, maxUpload int64) ([]reconcile.ChildPayload, error) {
	out := make([]reconcile.ChildPayload, 0, len(headers))
	for i, fh := range headers {
		up, err := readUpload(fh, maxUpload)
		if err != nil {
			return nil, err
		}
		fields := map[string]any{}
		if title, ok := titles[i]; ok {
			fields["title"] = title
		}
		if typ, ok := types[i]; ok {
			fields["document_type"] = typ
		}
		out = append(out, reconcile.ChildPayload{Fields: fields, File: up})
	}
	return out, nil
}

func readUpload(fh *multipart.FileHeader, maxUpload int64) (*reconcile.Upload, error) {
	if maxUpload > 0 && fh.Size > maxUpload {
		return nil, fmt.Errorf("%w: %s exceeds the %d byte upload limit", errBadForm, fh.Filename, maxUpload)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return &reconcile.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
