package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Client 无线控制器云端API客户端
//
// 上游是第三方控制器的REST接口，本客户端只做参数转发，
// 不解析业务负载（站点/设备/客户端数据原样透传给前端）。
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// NewClient 创建控制器API客户端
func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIResponse 控制器API响应（原样透传）
type APIResponse struct {
	ErrorCode int             `json:"errorCode"`
	Message   string          `json:"msg,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// GetSites 获取站点列表
func (c *Client) GetSites() (*APIResponse, error) {
	return c.do(http.MethodGet, "/api/v2/sites", nil, nil)
}

// GetDevices 获取站点下的AP设备列表
func (c *Client) GetDevices(siteID string) (*APIResponse, error) {
	return c.do(http.MethodGet, fmt.Sprintf("/api/v2/sites/%s/devices", url.PathEscape(siteID)), nil, nil)
}

// GetClients 获取站点当前在线客户端
func (c *Client) GetClients(siteID string, params map[string]string) (*APIResponse, error) {
	return c.do(http.MethodGet, fmt.Sprintf("/api/v2/sites/%s/clients", url.PathEscape(siteID)), params, nil)
}

// BlockClient 封禁客户端
func (c *Client) BlockClient(siteID, clientMAC string) (*APIResponse, error) {
	path := fmt.Sprintf("/api/v2/sites/%s/cmd/clients/%s/block", url.PathEscape(siteID), url.PathEscape(clientMAC))
	return c.do(http.MethodPost, path, nil, nil)
}

// UnblockClient 解封客户端
func (c *Client) UnblockClient(siteID, clientMAC string) (*APIResponse, error) {
	path := fmt.Sprintf("/api/v2/sites/%s/cmd/clients/%s/unblock", url.PathEscape(siteID), url.PathEscape(clientMAC))
	return c.do(http.MethodPost, path, nil, nil)
}

// UpdateWLANPassword 修改站点WLAN密码
func (c *Client) UpdateWLANPassword(siteID, wlanID, password string) (*APIResponse, error) {
	path := fmt.Sprintf("/api/v2/sites/%s/wlans/%s", url.PathEscape(siteID), url.PathEscape(wlanID))
	body := map[string]interface{}{"password": password}
	return c.do(http.MethodPatch, path, nil, body)
}

// do 执行请求并解析统一响应
func (c *Client) do(method, path string, params map[string]string, body interface{}) (*APIResponse, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		reqURL += "?" + values.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求体失败: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	// 请求ID用于上游问题排查
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("控制器API请求失败: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("控制器API返回异常状态码 %d: %s", resp.StatusCode, string(data))
	}

	var apiResp APIResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("解析控制器响应失败: %v", err)
	}

	return &apiResp, nil
}
