// Package secure protects encoded voice packets in transit between
// pipeline endpoints.
//
// Two sealers cover the two trust setups. ChannelSealer derives its
// keys from a Noise IK handshake between endpoints that know each
// other's static keys, giving mutual authentication and forward
// secrecy; its ciphers are ordered, matching an in-order transport.
// PresharedSealer uses a symmetric key distributed out of band and a
// random per-packet nonce, tolerating loss and reordering on datagram
// transports.
//
// Both sealers operate on whole codec packets and leave the packet
// format itself untouched: seal after encoding, open before decoding.
package secure
