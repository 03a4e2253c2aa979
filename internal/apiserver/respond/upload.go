package respond

import (
	"errors"
	"net/http"

	"hiring-portal/internal/shared/apperr"
	"hiring-portal/internal/shared/objstore"
)

// multipartOverhead 表单字段与边界的额外空间
const multipartOverhead = 1 << 20

// ParseMultipart 解析 multipart 表单，请求体超过 maxFile 加固定余量时拒绝
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxFile int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+multipartOverhead)
	if err := r.ParseMultipartForm(maxFile + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body exceeds %d bytes", tooLarge.Limit)
		}
		return apperr.Validation("invalid multipart form")
	}
	return nil
}

// FormFile 从已解析的表单中取出文件，返回的 close 需由调用方执行
func FormFile(r *http.Request, field string) (*objstore.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, apperr.Validation("%s file is required", field)
		}
		return nil, func() {}, apperr.Validation("invalid %s file", field)
	}
	u := &objstore.Upload{
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return u, func() {
		file.Close()
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}, nil
}
