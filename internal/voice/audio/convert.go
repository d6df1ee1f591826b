// Package audio converts between the phone network's G.711 mu-law format
// and the linear PCM the voice providers speak.
package audio

import "encoding/base64"

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// MuLawToPCM16k decodes 8kHz mu-law to 16-bit little-endian PCM at 16kHz.
func MuLawToPCM16k(mulaw []byte) []byte {
	pcm8k := make([]byte, len(mulaw)*2)
	for i, b := range mulaw {
		sample := decodeMuLaw(b)
		pcm8k[i*2] = byte(sample)
		pcm8k[i*2+1] = byte(sample >> 8)
	}
	return upsample(pcm8k, 2)
}

// PCM24kToMuLaw downsamples 24kHz 16-bit PCM to 8kHz and encodes mu-law.
// 24kHz is what the OpenAI realtime voices emit.
func PCM24kToMuLaw(pcm24k []byte) []byte {
	return encodePCM8k(downsample(pcm24k, 3))
}

// PCM16kToMuLaw downsamples 16kHz 16-bit PCM to 8kHz and encodes mu-law.
func PCM16kToMuLaw(pcm16k []byte) []byte {
	return encodePCM8k(downsample(pcm16k, 2))
}

// DecodeBase64 decodes a standard base64 payload, as carried in Twilio
// media frames.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// EncodeBase64 encodes audio for a Twilio media frame.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func encodePCM8k(pcm8k []byte) []byte {
	mulaw := make([]byte, len(pcm8k)/2)
	for i := 0; i+1 < len(pcm8k); i += 2 {
		sample := int16(pcm8k[i]) | int16(pcm8k[i+1])<<8
		mulaw[i/2] = encodeMuLaw(sample)
	}
	return mulaw
}

func decodeMuLaw(b byte) int16 {
	b = ^b
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := b & 0x0F

	sample := int16(mantissa<<3 | 0x84)
	sample <<= exponent
	sample -= mulawBias

	if sign != 0 {
		return -sample
	}
	return sample
}

func encodeMuLaw(sample int16) byte {
	sign := uint8(0)
	s := int32(sample)
	if s < 0 {
		sign = 0x80
		s = -s
	}
	if s > mulawClip {
		s = mulawClip
	}
	s += mulawBias

	// Segment number: position of the highest set bit above the mantissa.
	exponent := uint8(7)
	for mask := int32(0x4000); s&mask == 0 && exponent > 0; mask >>= 1 {
		exponent--
	}
	mantissa := uint8((s >> (exponent + 3)) & 0x0F)

	return ^(sign | (exponent << 4) | mantissa)
}

// downsample keeps every Nth 16-bit sample.
func downsample(pcm []byte, factor int) []byte {
	samples := len(pcm) / 2
	out := make([]byte, (samples/factor)*2)
	j := 0
	for i := 0; i+1 < len(pcm); i += 2 * factor {
		if j+1 < len(out) {
			out[j] = pcm[i]
			out[j+1] = pcm[i+1]
			j += 2
		}
	}
	return out[:j]
}

// upsample linearly interpolates between 16-bit samples.
func upsample(pcm []byte, factor int) []byte {
	samples := len(pcm) / 2
	out := make([]byte, samples*factor*2)

	for i := 0; i < samples-1; i++ {
		current := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		next := int16(pcm[(i+1)*2]) | int16(pcm[(i+1)*2+1])<<8
		for j := 0; j < factor; j++ {
			interpolated := current + int16(int32(next-current)*int32(j)/int32(factor))
			idx := (i*factor + j) * 2
			if idx+1 < len(out) {
				out[idx] = byte(interpolated)
				out[idx+1] = byte(interpolated >> 8)
			}
		}
	}

	if samples > 0 {
		last := int16(pcm[(samples-1)*2]) | int16(pcm[(samples-1)*2+1])<<8
		for j := 0; j < factor; j++ {
			idx := ((samples-1)*factor + j) * 2
			if idx+1 < len(out) {
				out[idx] = byte(last)
				out[idx+1] = byte(last >> 8)
			}
		}
	}
	return out
}
