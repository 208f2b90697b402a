package library

import (
	"context"

	"github.com/groovebot/groove-service/internal/services/spotify"
)

// AudioFeaturesForAll fetches audio features for every given track id in
// fixed-size batches until all ids are covered. Batches are independent;
// results are concatenated in input order. Unknown ids (null entries) are
// dropped.
func (s *Service) AudioFeaturesForAll(ctx context.Context, userID string, ids []string) ([]spotify.AudioFeature, error) {
	features := make([]spotify.AudioFeature, 0, len(ids))

	for start := 0; start < len(ids); start += featureBatchSize {
		end := start + featureBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		data, err := s.gw.InvokeCached(ctx, userID, s.client.AudioFeaturesOp(ids[start:end]))
		if err != nil {
			return nil, err
		}
		response, err := spotify.Decode[spotify.AudioFeaturesResponse](data)
		if err != nil {
			return nil, err
		}

		for _, feature := range response.AudioFeatures {
			if feature != nil {
				features = append(features, *feature)
			}
		}
	}

	return features, nil
}
