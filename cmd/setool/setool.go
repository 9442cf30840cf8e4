// Copyright 2023 The Tegra BSP authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// setool exercises the Security Engine driver against the simulated register
// backend, running known-answer self-tests for every engine data path. It is
// meant for driver development on a non-Tegra host, where no engine hardware
// is available.
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"time"

	"k8s.io/klog/v2"

	"github.com/tegra-bsp/tegra210/se"
	"github.com/tegra-bsp/tegra210/sesim"
)

type Config struct {
	base    uint
	timeout time.Duration
	size    int
}

var conf *Config

func init() {
	conf = &Config{}

	flag.UintVar(&conf.base, "base", se.SE1Base, "simulated register block base address")
	flag.DurationVar(&conf.timeout, "timeout", 100*time.Millisecond, "engine wait deadline")
	flag.IntVar(&conf.size, "size", 1024, "self-test payload size in bytes")
}

func newEngine() (*se.SecurityEngine, *sesim.Engine) {
	sesim.InitDMA(8 * 1024 * 1024)

	sim := sesim.New(uint32(conf.base))

	eng := &se.SecurityEngine{
		Base:    uint32(conf.base),
		Bus:     sim,
		Oracle:  sim,
		Alloc:   sesim.Alloc(),
		Timeout: conf.timeout,
	}
	eng.Init()

	return eng, sim
}

// testPayload returns an engine visible buffer with a deterministic pattern.
func testPayload(size int) []byte {
	buf := sesim.Buffer(size)

	for i := range buf {
		buf[i] = byte(i ^ i>>8)
	}

	return buf
}

func shaTest(eng *se.SecurityEngine) error {
	buf := testPayload(conf.size)

	digest, err := eng.CalculateSHA256(buf)

	if err != nil {
		return err
	}

	if expected := sha256.Sum256(buf); !bytes.Equal(digest, expected[:]) {
		return fmt.Errorf("digest mismatch, %x != %x", digest, expected)
	}

	klog.Infof("SHA256 %s", hex.EncodeToString(digest))

	return nil
}

func aesTest(eng *se.SecurityEngine) error {
	key := testPayload(32)

	if err := eng.SetKey(0, key); err != nil {
		return err
	}

	iv := make([]byte, 16)
	src := testPayload(conf.size &^ 15)
	enc := sesim.Buffer(len(src))
	dec := sesim.Buffer(len(src))

	if err := eng.EncryptCBC(0, se.AES256, iv, src, enc); err != nil {
		return err
	}

	if err := eng.DecryptCBC(0, se.AES256, iv, enc, dec); err != nil {
		return err
	}

	if !bytes.Equal(src, dec) {
		return errors.New("CBC decryption does not invert encryption")
	}

	mac, err := eng.SumCMAC(0, se.AES256, src)

	if err != nil {
		return err
	}

	klog.Infof("AES-CBC round trip ok, CMAC %x", mac)

	return nil
}

func rngTest(eng *se.SecurityEngine) error {
	if err := eng.InitRNG(); err != nil {
		return err
	}

	buf := sesim.Buffer(conf.size)

	if err := eng.GenerateRandom(buf); err != nil {
		return err
	}

	if bytes.Equal(buf, make([]byte, len(buf))) {
		return errors.New("generated buffer is all zeroes")
	}

	if err := eng.GenerateSRK(); err != nil {
		return err
	}

	klog.Infof("RNG %x..", buf[:16])

	return nil
}

func rsaTest(eng *se.SecurityEngine) error {
	modulus := testPayload(256)
	modulus[0] |= 0x80
	modulus[255] |= 1

	exponent := []byte{0x00, 0x01, 0x00, 0x01}

	info, err := se.NewRSAKeyInfo(len(modulus), len(exponent))

	if err != nil {
		return err
	}

	if err = eng.FillKeySlot(0, modulus, exponent); err != nil {
		return err
	}

	msg := testPayload(256)
	msg[0] = 0

	res := make([]byte, 256)

	if err = eng.RSAEncrypt(info, 0, msg, res); err != nil {
		return err
	}

	n := new(big.Int).SetBytes(modulus)
	e := new(big.Int).SetBytes(exponent)

	expected := make([]byte, 256)
	new(big.Int).Exp(new(big.Int).SetBytes(msg), e, n).FillBytes(expected)

	if !bytes.Equal(res, expected) {
		return errors.New("exponentiation result mismatch")
	}

	klog.Infof("RSA-2048 %x..", res[:16])

	return nil
}

func main() {
	var err error

	klog.InitFlags(nil)
	flag.Set("logtostderr", "true")
	flag.Parse()

	defer func() {
		if err != nil {
			klog.Exitf("fatal error, %s", err)
		}
	}()

	eng, _ := newEngine()

	for _, test := range []struct {
		name string
		fn   func(*se.SecurityEngine) error
	}{
		{"sha", shaTest},
		{"aes", aesTest},
		{"rng", rngTest},
		{"rsa", rsaTest},
	} {
		if err = test.fn(eng); err != nil {
			err = fmt.Errorf("%s self-test: %w", test.name, err)
			return
		}

		klog.Infof("%s self-test passed", test.name)
	}
}
