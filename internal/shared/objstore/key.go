package objstore

import (
	"path"
	"strings"
	"time"
)

// ResumeKey 生成简历对象 key：resumes/{userID}/{yyyymm}/{id}{ext}
func ResumeKey(userID, id, fileName string, at time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join("resumes", userID, at.UTC().Format("200601"), id+ext)
}
