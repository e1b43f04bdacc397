package learning

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	dataagg "github.com/yungbote/lms-backend/internal/data/aggregates"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/platform/dbctx"
)

type CertificateInput struct {
	StudentID uuid.UUID
	CourseID  uuid.UUID
}

// IssueResult reports the outcome of a certificate check. Eligible is false
// while the course is incomplete; AlreadyIssued marks the benign case where a
// certificate existed before this call.
type IssueResult struct {
	Eligible      bool               `json:"eligible"`
	AlreadyIssued bool               `json:"already_issued"`
	Certificate   *types.Certificate `json:"certificate,omitempty"`
}

// CheckAndIssueCertificate is the only writer of certificate rows. When every
// module of the course is complete it marks the course record completed and
// inserts the certificate unless one exists. A concurrent insert that loses on
// the (user, course) unique index is read back and reported as AlreadyIssued.
func (u Usecases) CheckAndIssueCertificate(ctx context.Context, in CertificateInput) (IssueResult, error) {
	const op = "learning.issue_certificate"
	var res IssueResult
	err := dataagg.Retry(ctx, u.deps.Write, op, func(ctx context.Context) error {
		res = IssueResult{}
		err := dataagg.ExecuteWrite(ctx, u.deps.Write, op, func(dbc dbctx.Context) error {
			snap, err := u.loadSnapshot(dbc, in.StudentID, in.CourseID)
			if err != nil {
				return err
			}
			if !snap.CourseComplete() {
				return nil
			}
			res.Eligible = true

			now := u.now()
			if rec := snap.CourseRecord; rec == nil || rec.Status != types.ProgressCompleted {
				row := types.NewCourseProgress(in.StudentID, in.CourseID, types.ProgressCompleted)
				row.CompletedAt = &now
				if err := u.deps.Progress.Upsert(dbc, row); err != nil {
					return err
				}
			}

			existing, err := u.deps.Certificates.GetByUserCourse(dbc, in.StudentID, in.CourseID)
			if err != nil {
				return err
			}
			if existing != nil {
				res.AlreadyIssued = true
				res.Certificate = existing
				return nil
			}
			cert := &types.Certificate{
				UserID:   in.StudentID,
				CourseID: in.CourseID,
				IssuedAt: now,
			}
			cert.CertificateCode = newCertificateCode(u.deps.Certs.CodePrefix)
			cert.VerificationURL = verificationURL(u.deps.Certs.VerifyBaseURL, cert.CertificateCode)
			if err := u.deps.Certificates.Create(dbc, cert); err != nil {
				return err
			}
			res.Certificate = cert
			return nil
		})
		if domainagg.IsCode(err, domainagg.CodeConflict) {
			existing, gerr := u.deps.Certificates.GetByUserCourse(dbctx.Context{Ctx: ctx}, in.StudentID, in.CourseID)
			if gerr == nil && existing != nil {
				res = IssueResult{Eligible: true, AlreadyIssued: true, Certificate: existing}
				return nil
			}
		}
		return err
	})
	if err != nil {
		return IssueResult{}, err
	}
	if res.Certificate != nil && !res.AlreadyIssued {
		u.deps.Metrics.IncCertificateIssued()
		u.deps.Log.Info("certificate issued",
			"student_id", in.StudentID,
			"course_id", in.CourseID,
			"certificate_code", res.Certificate.CertificateCode,
		)
	}
	return res, nil
}

type VerifyCertificateOutput struct {
	CertificateCode string    `json:"certificate_code"`
	StudentName     string    `json:"student_name"`
	CourseTitle     string    `json:"course_title"`
	IssuedAt        time.Time `json:"issued_at"`
}

// VerifyCertificate is the public lookup by code.
func (u Usecases) VerifyCertificate(ctx context.Context, code string) (VerifyCertificateOutput, error) {
	const op = "learning.verify_certificate"
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return VerifyCertificateOutput{}, domainagg.NewError(domainagg.CodeValidation, op, "certificate code is required", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	cert, err := u.deps.Certificates.GetByCode(dbc, code)
	if err != nil {
		return VerifyCertificateOutput{}, dataagg.MapError(op, err)
	}
	if cert == nil {
		return VerifyCertificateOutput{}, domainagg.NotFound(op, "certificate")
	}
	student, err := u.deps.Users.GetByID(dbc, cert.UserID)
	if err != nil {
		return VerifyCertificateOutput{}, dataagg.MapError(op, err)
	}
	course, err := u.deps.Courses.GetByID(dbc, cert.CourseID)
	if err != nil {
		return VerifyCertificateOutput{}, dataagg.MapError(op, err)
	}
	out := VerifyCertificateOutput{CertificateCode: cert.CertificateCode, IssuedAt: cert.IssuedAt}
	if student != nil {
		out.StudentName = student.FullName()
	}
	if course != nil {
		out.CourseTitle = course.Title
	}
	return out, nil
}

// codeAlphabet drops 0/O and 1/I so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newCertificateCode formats 12 random symbols as PREFIX-XXXX-XXXX-XXXX. The
// symbols come from the random bytes of a v4 uuid, skipping the version and
// variant bytes.
func newCertificateCode(prefix string) string {
	id := uuid.New()
	src := append(append([]byte{}, id[0:6]...), id[10:16]...)
	var b strings.Builder
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('-')
	}
	for i, c := range src {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String()
}

func verificationURL(base, code string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/certificates/verify/" + code
}
