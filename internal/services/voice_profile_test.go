package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kaive-ai/kaive-backend/internal/logger"
	"github.com/kaive-ai/kaive-backend/internal/types"
	"github.com/kaive-ai/kaive-backend/internal/voice"
)

type stubOpenAIClient struct {
	response string
	err      error
}

func (c *stubOpenAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (c *stubOpenAIClient) GenerateText(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func testVoiceService(t *testing.T, client OpenAIClient) *voiceProfileService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cache, err := voice.NewParseCache(10)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return &voiceProfileService{
		log:    log,
		client: client,
		cache:  cache,
	}
}

func TestGenerateLabelParsesResponse(t *testing.T) {
	s := testVoiceService(t, &stubOpenAIClient{
		response: "Name: Growth Tactics\nDescription: Posts about growing an audience.",
	})
	name, desc := s.generateLabel(context.Background(), "creator", 1, nil, 10)
	if name != "Growth Tactics" {
		t.Fatalf("name: got %q", name)
	}
	if desc != "Posts about growing an audience." {
		t.Fatalf("description: got %q", desc)
	}
}

func TestGenerateLabelFallsBackOnError(t *testing.T) {
	s := testVoiceService(t, &stubOpenAIClient{err: errors.New("rate limited")})
	name, desc := s.generateLabel(context.Background(), "creator", 2, nil, 10)
	if name != "Content Series 3" {
		t.Fatalf("fallback name: got %q", name)
	}
	if desc != "A collection of posts in cluster 2" {
		t.Fatalf("fallback description: got %q", desc)
	}
}

func TestBuildProfileStructureType(t *testing.T) {
	s := testVoiceService(t, &stubOpenAIClient{})

	single := s.buildProfile("creator", 0, "n", "d", voice.ClusterMetrics{AvgParagraphsPerPost: 1.0})
	if string(single.PostCharacteristics) == "" {
		t.Fatal("expected post characteristics json")
	}
	if want := `"structure_type":"single-paragraph"`; !strings.Contains(string(single.PostCharacteristics), want) {
		t.Fatalf("expected %s in %s", want, single.PostCharacteristics)
	}

	multi := s.buildProfile("creator", 0, "n", "d", voice.ClusterMetrics{AvgParagraphsPerPost: 2.4})
	if want := `"structure_type":"multi-paragraph"`; !strings.Contains(string(multi.PostCharacteristics), want) {
		t.Fatalf("expected %s in %s", want, multi.PostCharacteristics)
	}
}

func TestSortProfilesForRank(t *testing.T) {
	profiles := []*types.CreatorVoiceProfile{
		{ClusterID: 0, TotalEngagement: 10},
		{ClusterID: 1, TotalEngagement: 30},
		{ClusterID: 2, TotalEngagement: 20},
	}
	sortProfilesForRank(profiles)

	want := []int{1, 2, 0}
	for i, p := range profiles {
		if p.ClusterID != want[i] {
			t.Fatalf("position %d: got cluster %d, want %d", i, p.ClusterID, want[i])
		}
	}
}

func TestSortProfilesForRankTieBreak(t *testing.T) {
	profiles := []*types.CreatorVoiceProfile{
		{ClusterID: 3, TotalEngagement: 20},
		{ClusterID: 1, TotalEngagement: 20},
		{ClusterID: 2, TotalEngagement: 20},
	}
	sortProfilesForRank(profiles)

	want := []int{1, 2, 3}
	for i, p := range profiles {
		if p.ClusterID != want[i] {
			t.Fatalf("position %d: got cluster %d, want %d", i, p.ClusterID, want[i])
		}
	}
}
