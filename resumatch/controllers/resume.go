package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resumatch/resumatch/services/contextres"
	"resumatch/resumatch/services/tools"
	"resumatch/resumatch/sources/psql/dao"
	"resumatch/resumatch/sources/storage"
	"resumatch/resumatch/types"
	"resumatch/resumatch/utils/docs"
	"resumatch/resumatch/utils/logging"

	"go.uber.org/zap"
)

// ResumeController handles document ingestion: text extraction, LLM
// parsing, metadata persistence and raw-file archival.
type ResumeController struct {
	parser  *tools.ResumeParser
	resumes *dao.ResumeDAO
	store   *storage.MinIOClient
}

func NewResumeController(parser *tools.ResumeParser, resumes *dao.ResumeDAO, store *storage.MinIOClient) *ResumeController {
	return &ResumeController{parser: parser, resumes: resumes, store: store}
}

// Upload ingests one resume file. The parsed record is the source of
// truth; archiving the raw document is best-effort.
func (c *ResumeController) Upload(ctx context.Context, filename string, data []byte) (types.UploadResult, error) {
	text, err := docs.ReadResume(filename, data)
	if err != nil {
		return types.UploadResult{Filename: filename, Status: "error", Message: err.Error()}, err
	}
	if text == "" {
		err := fmt.Errorf("empty document: %s", filename)
		return types.UploadResult{Filename: filename, Status: "error", Message: err.Error()}, err
	}

	resume, err := c.parser.Parse(ctx, filename, text)
	if err != nil {
		return types.UploadResult{Filename: filename, Status: "error", Message: err.Error()}, err
	}

	if c.store != nil {
		if key, err := c.store.UploadResume(ctx, resume.Name, filename, data); err != nil {
			logging.ErrorLogger.Error("raw resume archive failed",
				zap.String("filename", filename), zap.Error(err))
		} else {
			resume.SourceFile = key
		}
	}

	if err := c.resumes.SaveMetadata(ctx, resume.Name, resume.SourceFile, resume); err != nil {
		return types.UploadResult{Filename: filename, Status: "error", Message: err.Error()}, err
	}

	logging.AppLogger.Info("resume ingested",
		zap.String("candidate", resume.Name), zap.String("filename", filename))
	return types.UploadResult{
		Filename:  filename,
		Candidate: resume.Name,
		Status:    "parsed",
	}, nil
}

// UploadMany ingests a batch; one bad file does not abort the rest.
func (c *ResumeController) UploadMany(ctx context.Context, files map[string][]byte) []types.UploadResult {
	results := make([]types.UploadResult, 0, len(files))
	for filename, data := range files {
		result, err := c.Upload(ctx, filename, data)
		if err != nil {
			logging.ErrorLogger.Error("resume upload failed",
				zap.String("filename", filename), zap.Error(err))
		}
		results = append(results, result)
	}
	return results
}

// ResumeSummary is the list-endpoint shape of a stored candidate.
type ResumeSummary struct {
	CandidateName string `json:"candidate_name"`
	SourceFile    string `json:"source_file"`
	TechCount     int    `json:"tech_count"`
	CreatedAt     string `json:"created_at"`
}

func (c *ResumeController) List(ctx context.Context) ([]ResumeSummary, error) {
	records, err := c.resumes.GetAllResumes(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]ResumeSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, ResumeSummary{
			CandidateName: rec.CandidateName,
			SourceFile:    rec.SourceFile,
			TechCount:     len(rec.ParsedJSON.TechStack),
			CreatedAt:     rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return summaries, nil
}

func (c *ResumeController) Clear(ctx context.Context) error {
	return c.resumes.Clear(ctx)
}

// ErrNoArchive reports that a candidate has no retrievable raw document:
// object storage is not configured, or the upload-time archive failed.
var ErrNoArchive = errors.New("no archived document")

// Download returns the originally uploaded document for a candidate,
// located with the same name matching the ask flow uses.
func (c *ResumeController) Download(ctx context.Context, candidateName string) ([]byte, string, error) {
	records, err := c.resumes.GetAllResumes(ctx)
	if err != nil {
		return nil, "", err
	}
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.CandidateName
	}
	matched, ok := contextres.MatchCandidate(candidateName, names)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrCandidateNotFound, candidateName)
	}

	for _, rec := range records {
		if rec.CandidateName != matched {
			continue
		}
		// Only object-store keys are retrievable; a bare filename means
		// the document was never archived.
		if c.store == nil || !strings.HasPrefix(rec.SourceFile, "resumes/") {
			return nil, "", fmt.Errorf("%w: %s", ErrNoArchive, matched)
		}
		data, err := c.store.GetResume(ctx, rec.SourceFile)
		if err != nil {
			return nil, "", err
		}
		return data, rec.SourceFile, nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrCandidateNotFound, candidateName)
}
