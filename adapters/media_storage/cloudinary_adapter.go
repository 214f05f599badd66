package media_storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/khoahotran/media-gateway/internal/application/service"
	"github.com/khoahotran/media-gateway/internal/config"
	"github.com/khoahotran/media-gateway/internal/domain/media"
	"github.com/khoahotran/media-gateway/pkg/logger"
)

type cloudinaryAdapter struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (service.MediaStore, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Connect Cloudinary successfully.")
	return &cloudinaryAdapter{cld: cld}, nil
}

// Upload sends the data URI as-is; the SDK posts non-local strings as the file field.
func (a *cloudinaryAdapter) Upload(ctx context.Context, dataURI string, opts media.UploadOptions) (*media.UploadedImage, error) {
	result, err := a.cld.Upload.Upload(ctx, dataURI, toUploadParams(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return nil, errors.New(result.Error.Message)
	}
	return &media.UploadedImage{
		PublicID:    result.PublicID,
		SecureURL:   result.SecureURL,
		Version:     result.Version,
		Overwritten: result.Overwritten,
	}, nil
}

func (a *cloudinaryAdapter) ListResources(ctx context.Context, query media.ResourceQuery) (*media.ResourceList, error) {
	result, err := a.cld.Admin.Assets(ctx, toAssetsParams(query))
	if err != nil {
		return nil, fmt.Errorf("failed to list cloudinary assets: %w", err)
	}
	if result.Error.Message != "" {
		return nil, errors.New(result.Error.Message)
	}

	list := &media.ResourceList{
		Resources:  make([]media.ImageResource, len(result.Assets)),
		NextCursor: result.NextCursor,
	}
	for i, asset := range result.Assets {
		list.Resources[i] = toImageResource(asset)
	}
	return list, nil
}

func (a *cloudinaryAdapter) Destroy(ctx context.Context, publicID string) error {
	result, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return errors.New(result.Error.Message)
	}
	return nil
}

func toUploadParams(opts media.UploadOptions) uploader.UploadParams {
	return uploader.UploadParams{
		PublicID:       opts.PublicID,
		Folder:         opts.Folder,
		Invalidate:     api.Bool(opts.Invalidate),
		Transformation: incomingTransformation(opts),
	}
}

// incomingTransformation renders the crop options as a Cloudinary transformation string,
// e.g. "ar_1.62,c_fill,g_center,w_600".
func incomingTransformation(opts media.UploadOptions) string {
	var parts []string
	if opts.AspectRatio != "" {
		parts = append(parts, "ar_"+opts.AspectRatio)
	}
	if opts.Crop != "" {
		parts = append(parts, "c_"+opts.Crop)
	}
	if opts.Gravity != "" {
		parts = append(parts, "g_"+opts.Gravity)
	}
	if opts.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(opts.Width))
	}
	return strings.Join(parts, ",")
}

func toAssetsParams(query media.ResourceQuery) admin.AssetsParams {
	return admin.AssetsParams{
		AssetType:    api.Image,
		DeliveryType: query.Type,
		Prefix:       query.Prefix,
		MaxResults:   query.MaxResults,
		NextCursor:   query.NextCursor,
	}
}

func toImageResource(asset api.BriefAssetResult) media.ImageResource {
	return media.ImageResource{
		AssetID:      asset.AssetID,
		PublicID:     asset.PublicID,
		Format:       asset.Format,
		Version:      asset.Version,
		ResourceType: asset.AssetType,
		Type:         asset.Type,
		CreatedAt:    asset.CreatedAt,
		Bytes:        asset.Bytes,
		Width:        asset.Width,
		Height:       asset.Height,
		URL:          asset.URL,
		SecureURL:    asset.SecureURL,
	}
}
