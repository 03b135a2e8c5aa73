package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/AzielCF/az-adlib/pkg/mediafetch"
	"github.com/AzielCF/az-adlib/validations"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	imageURLPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|webp)`)
	videoURLPattern = regexp.MustCompile(`(?i)\.mp4`)
)

// videoDownloader is satisfied by *mediafetch.Fetcher.
type videoDownloader interface {
	WithTempFile(ctx context.Context, rawURL string, maxBytes int64, fn func(file *os.File, info mediafetch.File) error) error
}

type AnalysisOptions struct {
	MaxVideoBytes int64
	Timeout       time.Duration
}

type analysisService struct {
	ads      domainAds.IAdsUsecase
	provider domainAnalysis.IAIProvider
	media    videoDownloader
	opts     AnalysisOptions
}

func NewAnalysisService(ads domainAds.IAdsUsecase, provider domainAnalysis.IAIProvider, media videoDownloader, opts AnalysisOptions) domainAnalysis.IAnalysisUsecase {
	return &analysisService{
		ads:      ads,
		provider: provider,
		media:    media,
		opts:     opts,
	}
}

func (s *analysisService) Analyze(ctx context.Context, request domainAnalysis.AnalyzeRequest) (domainAnalysis.AnalyzeResult, error) {
	if err := validations.ValidateAnalyze(ctx, request); err != nil {
		return domainAnalysis.AnalyzeResult{}, err
	}

	ad, err := s.ads.FindByID(ctx, request.AdID)
	if err != nil {
		return domainAnalysis.AnalyzeResult{}, err
	}
	bc := request.BusinessContext.WithDefaults()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	log := logrus.WithFields(logrus.Fields{
		"ad_id":      ad.ID,
		"media_type": ad.MediaType,
		"provider":   s.provider.Name(),
	})
	log.Info("[AI] Analysis started")
	start := time.Now()

	var (
		content *domainAnalysis.ContentAnalysis
		images  any
		video   any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.analyzeContent(gctx, ad, bc)
		if err != nil {
			return s.sectionError("content", err)
		}
		content = res
		return nil
	})
	if ad.HasImages() {
		g.Go(func() error {
			res, err := s.analyzeImages(gctx, ad, bc)
			if err != nil {
				return s.sectionError("image", err)
			}
			images = res
			return nil
		})
	}
	if ad.HasVideos() {
		g.Go(func() error {
			res, err := s.analyzeVideo(gctx, ad, bc)
			if err != nil {
				return s.sectionError("video", err)
			}
			video = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("[AI] Analysis failed")
		return domainAnalysis.AnalyzeResult{}, err
	}

	result := domainAnalysis.AnalyzeResult{
		Ad:              ad,
		BusinessContext: bc,
		Content:         content,
	}
	switch ad.MediaType {
	case domainAds.MediaTypeImage, domainAds.MediaTypeMixed:
		result.Media = images
	case domainAds.MediaTypeVideo:
		result.Media = video
	default:
		result.Media = domainAnalysis.Notice{Analysis: domainAnalysis.NoticeNoMedia}
	}
	if ad.HasVideos() {
		result.Video = video
	}

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond).String()).Info("[AI] Analysis completed")
	return result, nil
}

func (s *analysisService) sectionError(section string, err error) error {
	if _, ok := err.(pkgError.GenericError); ok {
		return err
	}
	return pkgError.NewUpstreamError(s.provider.Name(), fmt.Errorf("%s analysis: %w", section, err))
}

func (s *analysisService) analyzeContent(ctx context.Context, ad domainAds.AdItem, bc domainAnalysis.BusinessContext) (*domainAnalysis.ContentAnalysis, error) {
	raw, err := s.provider.GenerateJSON(ctx, domainAnalysis.JSONRequest{
		Name:         schemaContent,
		SystemPrompt: systemContent,
		Prompt:       contentPrompt(ad, bc),
		Schema:       contentSchema(),
	})
	if err != nil {
		return nil, err
	}

	var res domainAnalysis.ContentAnalysis
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", schemaContent, err)
	}
	return &res, nil
}

func (s *analysisService) analyzeImages(ctx context.Context, ad domainAds.AdItem, bc domainAnalysis.BusinessContext) (any, error) {
	urls := filterURLs(ad.Media, imageURLPattern)
	if len(urls) == 0 {
		return domainAnalysis.Notice{Analysis: domainAnalysis.NoticeNoImages}, nil
	}

	raw, err := s.provider.GenerateJSON(ctx, domainAnalysis.JSONRequest{
		Name:         schemaImage,
		SystemPrompt: systemImage,
		Prompt:       imagePrompt(bc),
		ImageURLs:    urls,
		Schema:       imageSchema(),
	})
	if err != nil {
		return nil, err
	}

	var res domainAnalysis.ImageAnalysis
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", schemaImage, err)
	}
	return &res, nil
}

// analyzeVideo transcribes every video one at a time, skipping the ones that
// fail, then asks for a script built from whatever transcripts were produced.
func (s *analysisService) analyzeVideo(ctx context.Context, ad domainAds.AdItem, bc domainAnalysis.BusinessContext) (any, error) {
	urls := filterURLs(ad.Media, videoURLPattern)
	if len(urls) == 0 {
		return domainAnalysis.Notice{Analysis: domainAnalysis.NoticeNoVideos}, nil
	}

	transcripts := make([]string, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := s.transcribe(ctx, u)
		if err != nil {
			logrus.WithError(err).WithField("url", u).Warn("[AI] Skipping video, transcription failed")
			continue
		}
		if text == "" {
			logrus.WithField("url", u).Debug("[AI] Empty transcript")
			continue
		}
		transcripts = append(transcripts, text)
	}
	if len(transcripts) == 0 {
		return domainAnalysis.Notice{Analysis: domainAnalysis.NoticeNoTranscript}, nil
	}

	raw, err := s.provider.GenerateJSON(ctx, domainAnalysis.JSONRequest{
		Name:         schemaVideo,
		SystemPrompt: systemVideo,
		Prompt:       videoPrompt(ad, bc, transcripts),
		Schema:       videoSchema(),
	})
	if err != nil {
		return nil, err
	}

	var res domainAnalysis.VideoScript
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", schemaVideo, err)
	}
	return &res, nil
}

func (s *analysisService) transcribe(ctx context.Context, videoURL string) (string, error) {
	var text string
	err := s.media.WithTempFile(ctx, videoURL, s.opts.MaxVideoBytes, func(file *os.File, info mediafetch.File) error {
		var err error
		text, err = s.provider.Transcribe(ctx, domainAnalysis.MediaFile{
			Name:     info.Name,
			MimeType: info.MimeType,
			Reader:   file,
		})
		return err
	})
	return strings.TrimSpace(text), err
}

func filterURLs(urls []string, pattern *regexp.Regexp) []string {
	var out []string
	for _, u := range urls {
		if pattern.MatchString(u) {
			out = append(out, u)
		}
	}
	return out
}
