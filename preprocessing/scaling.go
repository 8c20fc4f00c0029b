// Package preprocessing provides feature scalers compatible with
// scikit-learn's StandardScaler and MinMaxScaler, and ScaleFeatures, which
// fits a scaler on the training partition only and applies it to the test
// partition.
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

// ScalingMethod はスケーリング手法の列挙型です。
type ScalingMethod int

const (
	// ScalingNone は変換を行わない
	ScalingNone ScalingMethod = iota
	// ScalingStandard は平均0・分散1に標準化する
	ScalingStandard
	// ScalingMinMax は訓練データの最小値・最大値で [0,1] に変換する
	ScalingMinMax
)

// String returns the method name accepted by ParseScalingMethod.
func (m ScalingMethod) String() string {
	switch m {
	case ScalingNone:
		return "none"
	case ScalingStandard:
		return "standard"
	case ScalingMinMax:
		return "minmax"
	default:
		return fmt.Sprintf("ScalingMethod(%d)", int(m))
	}
}

// ParseScalingMethod は手法名 ("standard", "minmax", "none") を列挙値に変換します。
func ParseScalingMethod(name string) (ScalingMethod, error) {
	switch name {
	case "none":
		return ScalingNone, nil
	case "standard":
		return ScalingStandard, nil
	case "minmax":
		return ScalingMinMax, nil
	default:
		return 0, errors.NewValueErrorf("ParseScalingMethod",
			"invalid scaling method %q. Choose 'standard', 'minmax', or 'none'", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m ScalingMethod) MarshalText() ([]byte, error) {
	if m < ScalingNone || m > ScalingMinMax {
		return nil, errors.NewValueErrorf("ScalingMethod.MarshalText", "unknown scaling method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ScalingMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseScalingMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// NewScaler は手法に対応する未学習の Transformer を返します。
// ScalingNone の場合は nil を返します。
func NewScaler(method ScalingMethod) (model.Transformer, error) {
	switch method {
	case ScalingNone:
		return nil, nil
	case ScalingStandard:
		return NewStandardScalerDefault(), nil
	case ScalingMinMax:
		return NewMinMaxScalerDefault(), nil
	default:
		return nil, errors.NewValueErrorf("NewScaler", "invalid scaling method %s", method)
	}
}

// ScaleFeatures はスケーラーを XTrain のみで学習し、XTest には変換だけを適用します。
// テストデータの統計量がパラメータに影響することはありません。
// ScalingNone の場合は入力をそのまま返します。
func ScaleFeatures(XTrain, XTest mat.Matrix, method ScalingMethod) (trainScaled, testScaled mat.Matrix, err error) {
	scaler, err := NewScaler(method)
	if err != nil {
		return nil, nil, err
	}
	if scaler == nil {
		return XTrain, XTest, nil
	}

	if trainScaled, err = scaler.FitTransform(XTrain); err != nil {
		return nil, nil, errors.Wrapf(err, "scale features (%s)", method)
	}
	if testScaled, err = scaler.Transform(XTest); err != nil {
		return nil, nil, errors.Wrapf(err, "scale features (%s)", method)
	}

	r, c := XTrain.Dims()
	log.GetLoggerWithName("preprocessing").Debug("Scaled features",
		log.OperationKey, log.OperationFitTransform,
		log.MethodKey, method.String(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return trainScaled, testScaled, nil
}
