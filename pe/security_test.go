// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"errors"
	"testing"
)

func TestUnsignedImageHasNoSupplier(t *testing.T) {
	file := parseTestImage(t, newTestImage())
	if file.Supplier != "" {
		t.Errorf("Supplier = %q, want empty for an unsigned image", file.Supplier)
	}
}

func TestGarbageCertificateIsNonFatal(t *testing.T) {
	le := binary.LittleEndian
	content := make([]byte, 0x200)
	// A WIN_CERTIFICATE header whose PKCS#7 content is junk.
	const certOffset = 0x180 // file offset testSectionOffset+0x180 = 0x380
	le.PutUint32(content[certOffset:], 0x40)
	le.PutUint16(content[certOffset+6:], winCertTypePKCSSignedData)
	for i := certOffset + 8; i < certOffset+0x40; i++ {
		content[i] = 0xAB
	}

	img := newTestImage()
	img.content = content
	img.dirs[ImageDirectoryEntryCertificate] = DataDirectory{
		VirtualAddress: testSectionOffset + certOffset, // file offset, not an RVA
		Size:           0x40,
	}
	file, _ := NewBytes(img.build(t), nil)
	if err := file.Parse(); err != nil {
		t.Fatalf("Parse must not fail on a bad certificate: %v", err)
	}
	if file.Supplier != "" {
		t.Errorf("Supplier = %q, want empty after a PKCS#7 parse failure", file.Supplier)
	}
}

func TestUnsupportedCertificateType(t *testing.T) {
	data := make([]byte, 64)
	binary.LittleEndian.PutUint32(data[0:], 32)
	binary.LittleEndian.PutUint16(data[6:], 1) // WIN_CERT_TYPE_X509

	file, _ := NewBytes(data, nil)
	if err := file.parseSecurityDirectory(0, 32); !errors.Is(err, ErrUnsupported) {
		t.Errorf("parseSecurityDirectory(X509 type) = %v, want ErrUnsupported", err)
	}
}

func TestSignerName(t *testing.T) {
	withCN := &x509.Certificate{Subject: pkix.Name{CommonName: "Example Corp"}}
	if got := signerName(withCN); got != "Example Corp" {
		t.Errorf("signerName = %q, want the common name", got)
	}
	withoutCN := &x509.Certificate{Subject: pkix.Name{Organization: []string{"Example Org"}}}
	if got := signerName(withoutCN); got == "" {
		t.Error("signerName fell back to an empty string when the CN was absent")
	}
}
