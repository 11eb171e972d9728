// This file implements PropertyService: listing CRUD with ownership rules,
// the publish toggle, presigned image upload/download and the cached public
// listings feed.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/logging"
	"github.com/dmitrijs2005/bienesraices/internal/server/cache"
	sc "github.com/dmitrijs2005/bienesraices/internal/server/config"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	"github.com/dmitrijs2005/bienesraices/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const maxDescriptionLength = 200

// PropertyInput carries the listing form fields.
type PropertyInput struct {
	Title       string
	Description string
	CategoryID  int64
	PriceID     int64
	Rooms       int
	Parking     int
	Bathrooms   int
	Street      string
	Lat         float64
	Lng         float64
}

func (in *PropertyInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidInput)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: description is required", common.ErrInvalidInput)
	}
	if len(in.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", common.ErrInvalidInput, maxDescriptionLength)
	}
	if in.CategoryID <= 0 || in.PriceID <= 0 {
		return fmt.Errorf("%w: category and price are required", common.ErrInvalidInput)
	}
	if in.Lat == 0 || in.Lng == 0 {
		return fmt.Errorf("%w: location is required", common.ErrInvalidInput)
	}
	return nil
}

// PropertyService provides the listings area: owner-scoped CRUD, the
// publish toggle, image upload via presigned URLs and the public feed.
type PropertyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	listings    cache.ListingStore
	logger      logging.Logger
	config      *sc.Config
}

// NewPropertyService constructs a PropertyService. The listings cache may be
// nil, in which case the public feed always reads from the database.
func NewPropertyService(db *sql.DB, m repomanager.RepositoryManager, listings cache.ListingStore, logger logging.Logger, cfg *sc.Config) *PropertyService {
	return &PropertyService{
		db:          db,
		repomanager: m,
		listings:    listings,
		logger:      logger,
		config:      cfg,
	}
}

// GetRandomStorageKey returns a date-partitioned random object key for a
// listing image.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("properties/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// Create validates the form and inserts a new unpublished listing owned by
// userID.
func (s *PropertyService) Create(ctx context.Context, userID string, in *PropertyInput) (*models.Property, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Property{
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		PriceID:     in.PriceID,
		Rooms:       in.Rooms,
		Parking:     in.Parking,
		Bathrooms:   in.Bathrooms,
		Street:      in.Street,
		Lat:         in.Lat,
		Lng:         in.Lng,
		UserID:      userID,
	}

	repo := s.repomanager.Properties(s.db)
	created, err := repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("error creating property: %w", err)
	}
	return created, nil
}

// getOwned loads the property and enforces ownership.
func (s *PropertyService) getOwned(ctx context.Context, userID, id string) (*models.Property, error) {
	repo := s.repomanager.Properties(s.db)
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return p, nil
}

// Get returns the listing if userID owns it.
func (s *PropertyService) Get(ctx context.Context, userID, id string) (*models.Property, error) {
	return s.getOwned(ctx, userID, id)
}

// Update validates the form and writes the new field values. Only the owner
// may update, and the image and published state are untouched.
func (s *PropertyService) Update(ctx context.Context, userID, id string, in *PropertyInput) (*models.Property, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	p.Title = in.Title
	p.Description = in.Description
	p.CategoryID = in.CategoryID
	p.PriceID = in.PriceID
	p.Rooms = in.Rooms
	p.Parking = in.Parking
	p.Bathrooms = in.Bathrooms
	p.Street = in.Street
	p.Lat = in.Lat
	p.Lng = in.Lng

	repo := s.repomanager.Properties(s.db)
	if err := repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("error saving property: %w", err)
	}
	return p, nil
}

// Delete removes the listing and its messages. Only the owner may delete.
func (s *PropertyService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	repo := s.repomanager.Properties(s.db)
	if err := repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("error deleting property: %w", err)
	}
	s.invalidateListings(ctx)
	return nil
}

// PropertyPage is one page of the owner dashboard.
type PropertyPage struct {
	Items []*models.Property
	Total int64
}

// ListByOwner returns a page of the user's listings, newest first.
func (s *PropertyService) ListByOwner(ctx context.Context, userID string, limit, offset int) (*PropertyPage, error) {
	repo := s.repomanager.Properties(s.db)

	total, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting properties: %w", err)
	}
	items, err := repo.SelectByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error selecting properties: %w", err)
	}
	return &PropertyPage{Items: items, Total: total}, nil
}

// TogglePublish flips the published flag. Publishing requires an uploaded
// image (common.ErrMissingImage otherwise); unpublishing is always allowed.
func (s *PropertyService) TogglePublish(ctx context.Context, userID, id string) (*models.Property, error) {
	p, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !p.Published && p.ImageKey == "" {
		return nil, common.ErrMissingImage
	}

	p.Published = !p.Published
	repo := s.repomanager.Properties(s.db)
	if err := repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("error saving property: %w", err)
	}
	s.invalidateListings(ctx)
	return p, nil
}

// GetPublished returns a listing for the public detail page; unpublished
// listings yield common.ErrPropertyNotPublished.
func (s *PropertyService) GetPublished(ctx context.Context, id string) (*models.Property, error) {
	repo := s.repomanager.Properties(s.db)
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, common.ErrPropertyNotPublished
	}
	return p, nil
}

// Categories returns the category lookup table for the listing form.
func (s *PropertyService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.repomanager.Properties(s.db).SelectCategories(ctx)
}

// PriceRanges returns the price-range lookup table for the listing form.
func (s *PropertyService) PriceRanges(ctx context.Context) ([]*models.PriceRange, error) {
	return s.repomanager.Properties(s.db).SelectPriceRanges(ctx)
}

// ListPublished serves the public map feed, reading through the cache when
// one is configured. Cache failures are logged and fall back to the
// database.
func (s *PropertyService) ListPublished(ctx context.Context) ([]*models.Listing, error) {
	if s.listings != nil {
		cached, err := s.listings.GetListings(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "listings cache read failed", "error", err)
		}
	}

	repo := s.repomanager.Properties(s.db)
	listings, err := repo.SelectPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("error selecting listings: %w", err)
	}

	if s.listings != nil {
		if err := s.listings.SetListings(ctx, listings); err != nil {
			s.logger.Warn(ctx, "listings cache write failed", "error", err)
		}
	}
	return listings, nil
}

func (s *PropertyService) invalidateListings(ctx context.Context) {
	if s.listings == nil {
		return
	}
	if err := s.listings.Invalidate(ctx); err != nil {
		s.logger.Warn(ctx, "listings cache invalidation failed", "error", err)
	}
}

func (s *PropertyService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// RequestImageUpload returns a presigned PUT URL and the storage key the
// client must upload the listing image to. Only the owner may request one.
func (s *PropertyService) RequestImageUpload(ctx context.Context, userID, id string) (url string, key string, err error) {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", fmt.Errorf("unable to init presign client: %w", err)
	}

	key = GetRandomStorageKey()
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("unable to presign put request: %w", err)
	}

	return req.URL, key, nil
}

// ConfirmImageUpload records the uploaded object key on the listing. Only
// the owner may confirm.
func (s *PropertyService) ConfirmImageUpload(ctx context.Context, userID, id, key string) error {
	if key == "" {
		return fmt.Errorf("%w: image key is required", common.ErrInvalidInput)
	}
	p, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	p.ImageKey = key
	repo := s.repomanager.Properties(s.db)
	if err := repo.Save(ctx, p); err != nil {
		return fmt.Errorf("error saving property: %w", err)
	}
	return nil
}

// GetImageURL returns a presigned GET URL for the listing image.
func (s *PropertyService) GetImageURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", fmt.Errorf("unable to init presign client: %w", err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("unable to presign get request: %w", err)
	}

	return req.URL, nil
}
