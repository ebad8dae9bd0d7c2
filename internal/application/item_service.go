package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	repo "github.com/oksasatya/go-marketplace-api/internal/domain/repository"
	"github.com/oksasatya/go-marketplace-api/internal/infrastructure/upload"
	"github.com/oksasatya/go-marketplace-api/pkg/events"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
)

var (
	ErrItemNotFound          = errors.New("item not found")
	ErrForbidden             = errors.New("user not authorized")
	ErrNoFieldsModified      = errors.New("no matching fields to modify")
	ErrUnsupportedSearchType = errors.New("searchtype not supported")
	ErrTooManyImages         = errors.New("too many image files")
	ErrInvalidPrice          = errors.New("price must be a number")
)

// MissingFieldsError reports every required create field absent from
// the request, not just the first.
type MissingFieldsError struct {
	Keys []string
}

func (e *MissingFieldsError) Error() string {
	return "missing key(s): " + strings.Join(e.Keys, ", ")
}

// MaxImages bounds how many image files a create request may carry.
const MaxImages = 4

// requiredFields, in reporting order.
var requiredFields = []string{"title", "desc", "category", "location", "price", "date", "deliveryType", "name", "tel"}

// CreateItemInput holds the text fields of a multipart create request.
// Empty string means the field was absent.
type CreateItemInput struct {
	Title        string
	Desc         string
	Category     string
	Location     string
	Price        string
	Date         string
	DeliveryType string
	Name         string
	Tel          string
}

func (in *CreateItemInput) missing() []string {
	byKey := map[string]string{
		"title": in.Title, "desc": in.Desc, "category": in.Category,
		"location": in.Location, "price": in.Price, "date": in.Date,
		"deliveryType": in.DeliveryType, "name": in.Name, "tel": in.Tel,
	}
	var missing []string
	for _, k := range requiredFields {
		if byKey[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// ItemService orchestrates validation, ownership policy, blob storage,
// and the item store for the listing endpoints.
type ItemService struct {
	Repo         repo.ItemRepository
	Uploads      upload.Storage
	ES           *elasticsearch.Client
	ESItemsIndex string
	Pub          *helpers.RabbitPublisher
	Logger       *logrus.Logger

	// OwnerOnly gates update/delete on ownership. Disabled only for the
	// unauthenticated deployment mode.
	OwnerOnly bool
}

func NewItemService(r repo.ItemRepository, uploads upload.Storage, es *elasticsearch.Client, esIndex string, pub *helpers.RabbitPublisher, logger *logrus.Logger, ownerOnly bool) *ItemService {
	return &ItemService{Repo: r, Uploads: uploads, ES: es, ESItemsIndex: esIndex, Pub: pub, Logger: logger, OwnerOnly: ownerOnly}
}

func (s *ItemService) List(ctx context.Context) ([]*entity.Item, error) {
	return s.Repo.ListAll()
}

func (s *ItemService) Get(ctx context.Context, id int64) (*entity.Item, error) {
	it, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return it, nil
}

// Create validates field presence, stores the uploaded images, then
// appends the record. Image blobs written before a storage failure are
// not rolled back.
func (s *ItemService) Create(ctx context.Context, ownerID int64, in CreateItemInput, files []*multipart.FileHeader) (*entity.Item, error) {
	if missing := in.missing(); len(missing) > 0 {
		return nil, &MissingFieldsError{Keys: missing}
	}
	if len(files) > MaxImages {
		return nil, ErrTooManyImages
	}
	price, err := strconv.ParseFloat(in.Price, 64)
	if err != nil {
		return nil, ErrInvalidPrice
	}

	images := make([]string, 0, len(files))
	for _, fh := range files {
		handle, err := s.storeImage(ctx, fh)
		if err != nil {
			return nil, fmt.Errorf("store image %q: %w", fh.Filename, err)
		}
		images = append(images, handle)
	}

	it := &entity.Item{
		OwnerID:      ownerID,
		Title:        in.Title,
		Desc:         in.Desc,
		Category:     in.Category,
		Location:     in.Location,
		Images:       images,
		Price:        price,
		Date:         in.Date,
		DeliveryType: in.DeliveryType,
		Name:         in.Name,
		Tel:          in.Tel,
	}
	if err := s.Repo.Create(it); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{Type: events.ItemCreated, At: time.Now().UTC(), ItemID: it.ID, UserID: ownerID, Title: it.Title})
	s.index(ctx, it)
	return it, nil
}

// Update merges the partial fields into an existing item. Existence is
// checked before ownership, so a missing item is 404 even for a
// non-owner caller.
func (s *ItemService) Update(ctx context.Context, actorID, id int64, fields map[string]any) (*entity.Item, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.OwnerOnly && current.OwnerID != actorID {
		return nil, ErrForbidden
	}
	it, err := s.Repo.Update(id, fields)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNoFieldsModified):
			return nil, ErrNoFieldsModified
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	s.index(ctx, it)
	return it, nil
}

func (s *ItemService) Delete(ctx context.Context, actorID, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.OwnerOnly && current.OwnerID != actorID {
		return ErrForbidden
	}
	removed, err := s.Repo.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrItemNotFound
	}

	s.publish(ctx, events.Event{Type: events.ItemDeleted, At: time.Now().UTC(), ItemID: id, UserID: actorID, Title: current.Title})
	s.deindex(ctx, id)
	return nil
}

// Search filters items by case-insensitive substring containment of
// keyword in the given field. An empty result set is returned as-is;
// the handler maps it to 404.
func (s *ItemService) Search(ctx context.Context, field, keyword string) ([]*entity.Item, error) {
	results, err := s.Repo.Search(strings.ToLower(field), keyword)
	if err != nil {
		if errors.Is(err, repo.ErrUnsupportedField) {
			return nil, ErrUnsupportedSearchType
		}
		return nil, err
	}
	return results, nil
}

func (s *ItemService) storeImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	objectPath := filepath.ToSlash(filepath.Join("items", uuid.NewString()+ext))
	contentType := fh.Header.Get("Content-Type")
	return s.Uploads.Save(ctx, objectPath, contentType, f)
}

func (s *ItemService) publish(ctx context.Context, ev events.Event) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("type", ev.Type).Warn("publish event failed")
	}
}

func (s *ItemService) index(ctx context.Context, it *entity.Item) {
	if s.ES == nil || s.ESItemsIndex == "" {
		return
	}
	b, _ := json.Marshal(it)
	req := esapi.IndexRequest{
		Index:      s.ESItemsIndex,
		DocumentID: strconv.FormatInt(it.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("item_id", it.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("item_id", it.ID).Warn("es index response error")
	}
}

func (s *ItemService) deindex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESItemsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESItemsIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("item_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
