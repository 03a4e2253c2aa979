package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory 进程内对象存储，用于测试与未配置 MinIO 的本地开发
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErr 非空时 Put 直接返回该错误
	PutErr error
}

// NewMemory 创建内存对象存储
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Blob, error) {
	if m.PutErr != nil {
		return nil, m.PutErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return &Blob{ID: key, URL: "memory://" + key}, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Has 对象是否存在
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len 对象数量
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
