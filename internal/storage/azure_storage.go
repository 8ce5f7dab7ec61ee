package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/google/uuid"
)

// AzurePayloadStore keeps image payloads in an Azure blob container,
// one blob per payload, addressed by the generated reference.
type AzurePayloadStore struct {
	client    *azblob.Client
	container string
}

func NewAzurePayloadStore(accountName, accountKey, container string) (*AzurePayloadStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzurePayloadStore{client: client, container: container}, nil
}

func (s *AzurePayloadStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty payload")
	}
	ref := uuid.NewString()
	_, err := s.client.UploadBuffer(ctx, s.container, ref, data, nil)
	if err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	return ref, nil
}

func (s *AzurePayloadStore) Load(ctx context.Context, ref string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("blob download failed: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("blob read failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *AzurePayloadStore) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, ref, nil)
	if err != nil {
		return fmt.Errorf("blob delete failed: %w", err)
	}
	return nil
}
