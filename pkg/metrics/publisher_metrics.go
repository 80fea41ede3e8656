// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	publisherMetricSubsystem = "publisher"
)

var (
	PublishedDatagrams = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: plotterNamespace,
			Subsystem: publisherMetricSubsystem,
			Name:      "datagrams_total",
			Help:      "成功写出的数据报数量",
		}, []string{destinationLabelName})

	PublishedBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: plotterNamespace,
			Subsystem: publisherMetricSubsystem,
			Name:      "bytes_total",
			Help:      "成功写出的字节总数",
		}, []string{destinationLabelName})

	PublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: plotterNamespace,
			Subsystem: publisherMetricSubsystem,
			Name:      "failures_total",
			Help:      "按阶段统计的发送失败次数",
		}, []string{destinationLabelName, stageLabelName})

	DatagramSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: plotterNamespace,
			Subsystem: publisherMetricSubsystem,
			Name:      "datagram_size_bytes",
			Help:      "单个数据报的大小分布",
			Buckets:   sizeBuckets,
		}, []string{destinationLabelName})

	SendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: plotterNamespace,
			Subsystem: publisherMetricSubsystem,
			Name:      "send_latency_ms",
			Help:      "单次发送调用的耗时分布，单位毫秒",
			Buckets:   latencyBuckets,
		}, []string{destinationLabelName})
)

func registerPublisherMetrics(r prometheus.Registerer) {
	r.MustRegister(PublishedDatagrams)
	r.MustRegister(PublishedBytes)
	r.MustRegister(PublishFailures)
	r.MustRegister(DatagramSize)
	r.MustRegister(SendLatency)
}

// RecordSent 记录一次成功发送。
func RecordSent(destination string, size int, latencyMs float64) {
	PublishedDatagrams.WithLabelValues(destination).Inc()
	PublishedBytes.WithLabelValues(destination).Add(float64(size))
	DatagramSize.WithLabelValues(destination).Observe(float64(size))
	SendLatency.WithLabelValues(destination).Observe(latencyMs)
}

// RecordFailure 记录一次失败，stage 取 network.Stage 的字符串值。
func RecordFailure(destination string, stage string) {
	PublishFailures.WithLabelValues(destination, stage).Inc()
}
