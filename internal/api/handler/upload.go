package handler

import (
	"io"
	"mime/multipart"
)

// readFormFile 读取上传文件到内存；大小上限由 BodyLimit 与服务层共同把关
func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
