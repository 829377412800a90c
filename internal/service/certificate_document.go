package service

import (
	"bytes"
	"ethioheritage_backend/internal/model"
	"html/template"
)

var certificateTemplate = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Certificate {{.CertificateID}}</title>
</head>
<body>
<main class="certificate">
<h1>Certificate of Completion</h1>
<p>This certifies that</p>
<h2>{{.LearnerName}}</h2>
<p>has completed the EthioHeritage360 course</p>
<h3>{{.CourseTitle}}</h3>
<dl>
<dt>Completed</dt><dd>{{.CompletionDate.Format "2 January 2006"}}</dd>
<dt>Final score</dt><dd>{{.FinalScore}}</dd>
<dt>Lessons</dt><dd>{{.LessonsCompleted}} / {{.TotalLessons}}</dd>
<dt>Time spent</dt><dd>{{.TimeSpent}} minutes</dd>
</dl>
<footer>
<p>Certificate ID: {{.CertificateID}}</p>
<p>Verify at /api/certificates/verify/{{.VerificationCode}}</p>
</footer>
</main>
</body>
</html>
`))

// renderCertificate produces the HTML document stored next to the certificate record.
func renderCertificate(cert *model.Certificate) ([]byte, error) {
	var buf bytes.Buffer
	if err := certificateTemplate.Execute(&buf, cert); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
