package handler

import (
	"io"
	"mime/multipart"

	"anonboard/internal/pkg/uploader"
	"anonboard/pkg/errs"
	"anonboard/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// MaxFilesPerRequest 单次上传文件数上限
const MaxFilesPerRequest = 9

type UploadHandler struct {
	store uploader.BlobStore
}

func NewUploadHandler(store uploader.BlobStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadFile 上传图片 (支持批量)
// @Summary 上传图片到 OSS (支持批量)
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	if h.store == nil {
		response.HandleError(c, errs.InvalidArgument("image upload is not enabled"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.HandleError(c, errs.InvalidArgument("no files uploaded"))
		return
	}
	if len(files) > MaxFilesPerRequest {
		response.HandleError(c, errs.Newf(errs.ErrInvalidArgument, "at most %d files per request", MaxFilesPerRequest))
		return
	}

	// 按索引写入，保证返回顺序与上传顺序一致
	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(5)
	for i, file := range files {
		g.Go(func() error {
			data, err := readFile(file)
			if err != nil {
				return err
			}
			url, err := h.store.Store(ctx, data, file.Header.Get("Content-Type"))
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, urls)
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > uploader.MaxImageSize {
		return nil, errs.InvalidArgument("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, uploader.MaxImageSize+1))
}
