// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"crypto/x509"
	"encoding/binary"
	"fmt"

	"go.mozilla.org/pkcs7"
)

const (
	winCertificateHeaderSize = 8

	// WIN_CERT_TYPE_PKCS_SIGNED_DATA: the only certificate type Windows
	// itself still emits.
	winCertTypePKCSSignedData = 2
)

// parseSecurityDirectory reads the Authenticode signature and records the
// signing certificate's subject as the component supplier. Unlike every
// other directory, the certificate entry's VirtualAddress is a raw file
// offset. Signature *validation* is out of scope: the signer identity is
// evidence, not a trust decision.
func (pe *File) parseSecurityDirectory(fileOffset, size uint32) error {
	header, err := pe.readBytes(fileOffset, winCertificateHeaderSize)
	if err != nil {
		return fmt.Errorf("%w: WIN_CERTIFICATE header", ErrTruncated)
	}
	length := binary.LittleEndian.Uint32(header[0:4])
	certType := binary.LittleEndian.Uint16(header[6:8])

	if certType != winCertTypePKCSSignedData {
		return fmt.Errorf("%w: certificate type %d", ErrUnsupported, certType)
	}
	if length < winCertificateHeaderSize || length > size {
		return fmt.Errorf("%w: certificate length %d in a %d-byte directory", ErrMalformed, length, size)
	}

	content, err := pe.readBytes(fileOffset+winCertificateHeaderSize, length-winCertificateHeaderSize)
	if err != nil {
		return fmt.Errorf("%w: certificate content", ErrTruncated)
	}
	p7, err := pkcs7.Parse(content)
	if err != nil {
		return fmt.Errorf("%w: PKCS#7 blob: %v", ErrMalformed, err)
	}

	if signer := p7.GetOnlySigner(); signer != nil {
		pe.Supplier = signerName(signer)
	}
	return nil
}

func signerName(cert *x509.Certificate) string {
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	return cert.Subject.String()
}
