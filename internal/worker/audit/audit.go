// Package audit はストアの参照整合性を定期的に検査するバックグラウンドジョブを提供する。
//
// ミューテーションは書き込み前に不変条件を検査するため、通常は違反が見つかることはない。
// 違反が見つかった場合は内部の不具合を示すため、エラーログとメトリクスで通知する。
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/postgraph/internal/relation"
	"github.com/hitoshi/postgraph/internal/store"
)

// ErrIntegrityViolation は検査で違反が1件以上見つかった場合のエラー。
var ErrIntegrityViolation = errors.New("audit: integrity violation")

// 違反の種類。
const (
	KindDanglingPostAuthor    = "dangling_post_author"
	KindDanglingCommentAuthor = "dangling_comment_author"
	KindDanglingCommentPost   = "dangling_comment_post"
	KindDuplicateEmail        = "duplicate_email"
)

// Violation は1件の整合性違反を表す。
type Violation struct {
	Kind string
	ID   string // 違反しているレコードのID
	Ref  string // 参照先のID、またはメールアドレス
}

// Report は1回の検査結果。
type Report struct {
	Counts     store.Counts
	Violations []Violation
}

// Check はストアの内容を走査し、参照整合性とメールアドレスの一意性を検査する。
func Check(r store.Reader) Report {
	rep := Report{Counts: r.Counts()}

	seen := make(map[string]string)
	for _, u := range r.Users() {
		if first, ok := seen[u.Email]; ok {
			rep.Violations = append(rep.Violations, Violation{Kind: KindDuplicateEmail, ID: u.ID, Ref: first})
			continue
		}
		seen[u.Email] = u.ID
	}

	for _, p := range r.Posts() {
		if _, err := relation.PostAuthor(r, p); err != nil {
			rep.Violations = append(rep.Violations, Violation{Kind: KindDanglingPostAuthor, ID: p.ID, Ref: p.Author})
		}
	}

	for _, c := range r.Comments() {
		if _, err := relation.CommentAuthor(r, c); err != nil {
			rep.Violations = append(rep.Violations, Violation{Kind: KindDanglingCommentAuthor, ID: c.ID, Ref: c.Author})
		}
		if _, err := relation.CommentPost(r, c); err != nil {
			rep.Violations = append(rep.Violations, Violation{Kind: KindDanglingCommentPost, ID: c.ID, Ref: c.Post})
		}
	}

	return rep
}

// MetricsRecorder は検査結果を記録するインターフェース。
type MetricsRecorder interface {
	SetEntityCounts(users, posts, comments int)
	SetIntegrityViolations(count int)
}

// Job はストアの整合性検査ジョブ。
type Job struct {
	store   *store.Store
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewJob は新しいJobを生成する。loggerがnilの場合はslog.Default()を使用する。metricsはnilでもよい。
func NewJob(s *store.Store, logger *slog.Logger, metrics MetricsRecorder) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		store:   s,
		logger:  logger,
		metrics: metrics,
	}
}

// Run は検査を1回実行する。違反が見つかった場合はErrIntegrityViolationをラップしたエラーを返す。
func (j *Job) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	var rep Report
	j.store.View(func(r store.Reader) {
		rep = Check(r)
	})

	if j.metrics != nil {
		j.metrics.SetEntityCounts(rep.Counts.Users, rep.Counts.Posts, rep.Counts.Comments)
		j.metrics.SetIntegrityViolations(len(rep.Violations))
	}

	if len(rep.Violations) > 0 {
		for _, v := range rep.Violations {
			j.logger.Error("integrity violation",
				slog.String("kind", v.Kind),
				slog.String("id", v.ID),
				slog.String("ref", v.Ref),
			)
		}
		return rep, fmt.Errorf("%w: %d found", ErrIntegrityViolation, len(rep.Violations))
	}

	j.logger.Debug("integrity audit completed",
		slog.Int("users", rep.Counts.Users),
		slog.Int("posts", rep.Counts.Posts),
		slog.Int("comments", rep.Counts.Comments),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return rep, nil
}

// Start はinterval間隔で検査を実行する。起動直後に1回実行し、
// コンテキストがキャンセルされるまで継続する。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("integrity audit started", slog.Duration("interval", interval))

	j.runAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("integrity audit stopped")
			return
		case <-ticker.C:
			j.runAndLog(ctx)
		}
	}
}

func (j *Job) runAndLog(ctx context.Context) {
	if _, err := j.Run(ctx); err != nil {
		j.logger.Error("integrity audit failed", slog.String("error", err.Error()))
	}
}
