package face

import (
	"context"
	"fmt"

	appconfig "photo-market/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/rs/zerolog"
)

// Match is one face hit from a similarity search.
type Match struct {
	FaceID string
	Score  float32
}

// Index abstracts the facial-recognition service: index faces found in an
// image under an external id, and search a collection by reference image.
type Index interface {
	IndexFaces(ctx context.Context, image []byte, externalID string) ([]string, error)
	SearchFaces(ctx context.Context, image []byte, maxResults int32, threshold float32) ([]Match, error)
}

// rekognitionIndex implements Index against AWS Rekognition.
type rekognitionIndex struct {
	client       *rekognition.Client
	collectionID string
	logger       zerolog.Logger
}

// NewRekognitionIndex creates a new Rekognition-backed face index.
func NewRekognitionIndex(ctx context.Context, cfg appconfig.RekognitionConfig, logger zerolog.Logger) (Index, error) {
	logger = logger.With().Str("component", "face-index").Logger()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("collection_id", cfg.CollectionID).
		Str("region", cfg.Region).
		Msg("face index initialised")

	return &rekognitionIndex{
		client:       rekognition.NewFromConfig(awsCfg),
		collectionID: cfg.CollectionID,
		logger:       logger,
	}, nil
}

func (i *rekognitionIndex) IndexFaces(ctx context.Context, image []byte, externalID string) ([]string, error) {
	out, err := i.client.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId:    aws.String(i.collectionID),
		Image:           &types.Image{Bytes: image},
		ExternalImageId: aws.String(externalID),
	})
	if err != nil {
		i.logger.Error().
			Err(err).
			Str("external_id", externalID).
			Msg("failed to index faces")
		return nil, fmt.Errorf("failed to index faces for %s: %w", externalID, err)
	}

	faceIDs := make([]string, 0, len(out.FaceRecords))
	for _, record := range out.FaceRecords {
		if record.Face != nil && record.Face.FaceId != nil {
			faceIDs = append(faceIDs, *record.Face.FaceId)
		}
	}

	i.logger.Debug().
		Str("external_id", externalID).
		Int("faces", len(faceIDs)).
		Msg("faces indexed")

	return faceIDs, nil
}

func (i *rekognitionIndex) SearchFaces(ctx context.Context, image []byte, maxResults int32, threshold float32) ([]Match, error) {
	out, err := i.client.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(i.collectionID),
		Image:              &types.Image{Bytes: image},
		MaxFaces:           aws.Int32(maxResults),
		FaceMatchThreshold: aws.Float32(threshold),
	})
	if err != nil {
		i.logger.Error().Err(err).Msg("face search failed")
		return nil, fmt.Errorf("face search failed: %w", err)
	}

	matches := make([]Match, 0, len(out.FaceMatches))
	for _, m := range out.FaceMatches {
		if m.Face == nil || m.Face.FaceId == nil {
			continue
		}
		match := Match{FaceID: *m.Face.FaceId}
		if m.Similarity != nil {
			match.Score = *m.Similarity
		}
		matches = append(matches, match)
	}

	return matches, nil
}
